package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hashicorp-forge/dropinblog/pkg/database"
	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/node"
	"github.com/hashicorp-forge/dropinblog/pkg/output"
)

const (
	// Subscription backends.
	SubscriptionsDatabase = "database"
	SubscriptionsRedis    = "redis"
	SubscriptionsMemory   = "memory"

	DefaultAddr   = "127.0.0.1:8000"
	DefaultDSN    = "dropinblog.db"
	DefaultLogLvl = "info"
)

// Config contains the runner configuration.
//
// Example configuration (HCL):
//
//	log_level  = "info"
//	public_url = "https://hooks.example.com"
//
//	api {
//	  base_url = "https://api.dropinblog.com"
//	}
//
//	oauth {
//	  client_id     = env("DROPINBLOG_CLIENT_ID")
//	  client_secret = env("DROPINBLOG_CLIENT_SECRET")
//	  redirect_url  = "http://127.0.0.1:8000/oauth/callback"
//	}
//
//	database {
//	  driver = "sqlite"
//	  dsn    = "dropinblog.db"
//	}
//
//	trigger "main-blog" {
//	  blog_id = "12345"
//	  event   = "post.published"
//	}
type Config struct {
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `hcl:"log_level,optional" json:"log_level"`

	// PublicURL is the externally reachable base URL of the callback
	// server. Trigger webhook URLs are PublicURL + "/webhook/{name}".
	PublicURL string `hcl:"public_url,optional" json:"public_url"`

	API      *dropinblog.Config      `hcl:"api,block" json:"api"`
	OAuth    *dropinblog.OAuthConfig `hcl:"oauth,block" json:"oauth"`
	Server   *Server                 `hcl:"server,block" json:"server"`
	Database *Database               `hcl:"database,block" json:"database"`
	Redis    *Redis                  `hcl:"redis,block" json:"redis"`
	State    *State                  `hcl:"state,block" json:"state"`
	Kafka    *Kafka                  `hcl:"kafka,block" json:"kafka"`
	Output   *Output                 `hcl:"output,block" json:"output"`
	Triggers []*Trigger              `hcl:"trigger,block" json:"trigger"`
}

// Server configures the callback HTTP server.
type Server struct {
	Addr string `hcl:"addr,optional" json:"addr"`
}

// Database configures the SQL database for subscriptions and tokens.
type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver string `hcl:"driver,optional" json:"driver"`
	DSN    string `hcl:"dsn,optional" json:"dsn"`

	AutoMigrate *bool `hcl:"auto_migrate,optional" json:"auto_migrate"`
}

// Redis configures the redis subscription backend.
type Redis struct {
	Addr     string `hcl:"addr" json:"addr"`
	Password string `hcl:"password,optional" json:"-"`
	DB       int    `hcl:"db,optional" json:"db"`
}

// State selects where trigger subscriptions live. OAuth tokens are always
// kept in the database.
type State struct {
	// Subscriptions is "database", "redis" or "memory".
	Subscriptions string `hcl:"subscriptions,optional" json:"subscriptions"`

	// TokenName is the credential name tokens are stored under.
	TokenName string `hcl:"token_name,optional" json:"token_name"`
}

// Kafka enables publishing deliveries to Kafka/Redpanda.
type Kafka struct {
	Brokers []string `hcl:"brokers" json:"brokers"`
	Topic   string   `hcl:"topic,optional" json:"topic"`
}

// Output configures the stdout delivery stream.
type Output struct {
	// Framing is "raw" (body as received) or "envelope" (one JSON object
	// per delivery, safe for multi-line bodies).
	Framing string `hcl:"framing,optional" json:"framing"`
}

// Trigger is one trigger node instance. Name doubles as the node id and the
// last path segment of its webhook URL.
type Trigger struct {
	Name   string `hcl:"name,label" json:"name"`
	BlogID string `hcl:"blog_id" json:"blog_id"`
	Event  string `hcl:"event,optional" json:"event"`
}

// envFunc is the HCL env("NAME") function. Unset variables are empty.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// Default returns the configuration used without a config file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses the HCL file at path, applies defaults and validates it.
func Load(path string) (*Config, error) {
	c := &Config{}
	if err := hclsimple.DecodeFile(path, evalContext(), c); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return c.finish()
}

// Parse is Load for in-memory source. filename only selects the syntax
// (.hcl or .json) and appears in diagnostics.
func Parse(filename string, src []byte) (*Config, error) {
	c := &Config{}
	if err := hclsimple.Decode(filename, src, evalContext(), c); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return c.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLvl
	}
	if c.API == nil {
		c.API = &dropinblog.Config{}
	}
	c.API.ApplyDefaults()
	if c.OAuth == nil {
		c.OAuth = &dropinblog.OAuthConfig{}
	}
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://" + c.Server.Addr
	}
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")
	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = database.DriverSQLite
	}
	if c.Database.DSN == "" && c.Database.Driver == database.DriverSQLite {
		c.Database.DSN = DefaultDSN
	}
	if c.Database.AutoMigrate == nil {
		autoMigrate := true
		c.Database.AutoMigrate = &autoMigrate
	}
	if c.State == nil {
		c.State = &State{}
	}
	if c.State.Subscriptions == "" {
		c.State.Subscriptions = SubscriptionsDatabase
	}
	if c.Kafka != nil && c.Kafka.Topic == "" {
		c.Kafka.Topic = output.DefaultTopic
	}
	if c.Output == nil {
		c.Output = &Output{}
	}
	if c.Output.Framing == "" {
		c.Output.Framing = string(output.FramingRaw)
	}
	for _, t := range c.Triggers {
		if t.Event == "" {
			t.Event = node.EventPostPublished
		}
	}
}

// Validate checks every block and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.PublicURL, validation.Required, validation.By(httpURL)),
	); err != nil {
		result = multierror.Append(result, err)
	}

	if err := c.API.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("api: %w", err))
	}

	if err := validation.ValidateStruct(c.Database,
		validation.Field(&c.Database.Driver, validation.In(database.DriverSQLite, database.DriverPostgres)),
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("database: %w", err))
	}

	if err := validation.ValidateStruct(c.State,
		validation.Field(&c.State.Subscriptions,
			validation.In(SubscriptionsDatabase, SubscriptionsRedis, SubscriptionsMemory)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("state: %w", err))
	}
	if c.State.Subscriptions == SubscriptionsRedis && c.Redis == nil {
		result = multierror.Append(result, fmt.Errorf("state: redis subscriptions need a redis block"))
	}

	if c.Kafka != nil {
		if err := validation.ValidateStruct(c.Kafka,
			validation.Field(&c.Kafka.Brokers, validation.Required),
		); err != nil {
			result = multierror.Append(result, fmt.Errorf("kafka: %w", err))
		}
	}

	if err := validation.ValidateStruct(c.Output,
		validation.Field(&c.Output.Framing,
			validation.In(string(output.FramingRaw), string(output.FramingEnvelope))),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("output: %w", err))
	}

	seen := make(map[string]bool, len(c.Triggers))
	for _, t := range c.Triggers {
		if seen[t.Name] {
			result = multierror.Append(result, fmt.Errorf("trigger %q: defined more than once", t.Name))
		}
		seen[t.Name] = true

		if err := validation.ValidateStruct(t,
			validation.Field(&t.Name, validation.Required, validation.By(pathSegment)),
			validation.Field(&t.BlogID, validation.Required),
			validation.Field(&t.Event, validation.In(node.EventPostPublished)),
		); err != nil {
			result = multierror.Append(result, fmt.Errorf("trigger %q: %w", t.Name, err))
		}
	}

	return result.ErrorOrNil()
}

// Trigger returns the named trigger, or nil.
func (c *Config) Trigger(name string) *Trigger {
	for _, t := range c.Triggers {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// WebhookURL returns the callback URL registered for a trigger.
func (c *Config) WebhookURL(name string) string {
	return c.PublicURL + "/webhook/" + url.PathEscape(name)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

func pathSegment(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "/?#") {
		return fmt.Errorf("must not contain '/', '?' or '#'")
	}
	return nil
}
