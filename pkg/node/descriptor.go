// Package node describes the DropInBlog workflow nodes: their parameters,
// defaults, credentials and webhook endpoints.
package node

const (
	CredentialName = "dropInBlogOAuth2Api"

	ActionName  = "dropInBlog"
	TriggerName = "dropInBlogTrigger"

	// EventPostPublished is the only event the trigger offers.
	EventPostPublished = "post.published"

	// LoadBlogs and LoadStatuses name the option loaders properties refer to.
	LoadBlogs    = "getBlogs"
	LoadStatuses = "getStatuses"
)

// PropertyType is the input control of a property.
type PropertyType string

const (
	TypeString     PropertyType = "string"
	TypeNumber     PropertyType = "number"
	TypeOptions    PropertyType = "options"
	TypeCollection PropertyType = "collection"
)

// Option is one fixed choice of an options property.
type Option struct {
	Name        string `json:"name"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

// Property is one node parameter.
type Property struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Type        PropertyType `json:"type"`
	Required    bool         `json:"required,omitempty"`
	Default     any          `json:"default"`
	Description string       `json:"description,omitempty"`

	// Options holds fixed choices for TypeOptions.
	Options []Option `json:"options,omitempty"`

	// Fields holds the members of a TypeCollection.
	Fields []Property `json:"fields,omitempty"`

	// LoadOptions names an option loader that supplies choices at runtime.
	LoadOptions string `json:"loadOptions,omitempty"`

	// MinValue and MaxValue bound TypeNumber values when non-zero.
	MinValue int `json:"minValue,omitempty"`
	MaxValue int `json:"maxValue,omitempty"`

	// ShowFor limits the property to the listed operations.
	ShowFor []string `json:"showFor,omitempty"`
}

// Webhook is an inbound endpoint a trigger node exposes.
type Webhook struct {
	Name         string `json:"name"`
	HTTPMethod   string `json:"httpMethod"`
	Path         string `json:"path"`
	ResponseMode string `json:"responseMode"`
}

// Descriptor is the static metadata of a node type.
type Descriptor struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description"`
	Group       string     `json:"group"`
	Version     int        `json:"version"`
	Credentials []string   `json:"credentials"`
	Properties  []Property `json:"properties"`
	Webhooks    []Webhook  `json:"webhooks,omitempty"`
}

// Property returns the named top-level or collection property.
func (d *Descriptor) Property(name string) (Property, bool) {
	return findProperty(d.Properties, name)
}

func findProperty(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
		if p, ok := findProperty(p.Fields, name); ok {
			return p, true
		}
	}
	return Property{}, false
}

// LoadOptionNames lists every option loader the descriptor refers to.
func (d *Descriptor) LoadOptionNames() []string {
	var names []string
	seen := map[string]bool{}
	var walk func([]Property)
	walk = func(props []Property) {
		for _, p := range props {
			if p.LoadOptions != "" && !seen[p.LoadOptions] {
				seen[p.LoadOptions] = true
				names = append(names, p.LoadOptions)
			}
			walk(p.Fields)
		}
	}
	walk(d.Properties)
	return names
}

// All returns the descriptors of every node type.
func All() []*Descriptor {
	return []*Descriptor{Action(), Trigger()}
}

func blogProperty(description string, showFor ...string) Property {
	return Property{
		Name:        "blogId",
		DisplayName: "Blog",
		Type:        TypeOptions,
		Required:    true,
		Default:     "",
		LoadOptions: LoadBlogs,
		Description: description,
		ShowFor:     showFor,
	}
}

// Action describes the post action node.
func Action() *Descriptor {
	return &Descriptor{
		Name:        ActionName,
		DisplayName: "DropInBlog",
		Description: "Interact with DropInBlog",
		Group:       "transform",
		Version:     1,
		Credentials: []string{CredentialName},
		Properties: []Property{
			{
				Name:        "resource",
				DisplayName: "Resource",
				Type:        TypeOptions,
				Default:     "post",
				Options:     []Option{{Name: "Post", Value: "post"}},
				Description: "The resource to operate on",
			},
			{
				Name:        "operation",
				DisplayName: "Operation",
				Type:        TypeOptions,
				Default:     "create",
				Options: []Option{
					{Name: "Create", Value: "create", Description: "Create a new blog post"},
					{Name: "Get", Value: "get", Description: "Get a post by ID or slug"},
					{Name: "Search", Value: "search", Description: "Search blog posts"},
				},
			},
			blogProperty("The blog to work with", "create", "get", "search"),
			{
				Name:        "postIdentifier",
				DisplayName: "Post ID or Slug",
				Type:        TypeString,
				Required:    true,
				Default:     "",
				Description: "The numeric ID or slug of the post to retrieve",
				ShowFor:     []string{"get"},
			},
			{
				Name:        "title",
				DisplayName: "Title",
				Type:        TypeString,
				Required:    true,
				Default:     "",
				Description: "The title of the post",
				ShowFor:     []string{"create"},
			},
			{
				Name:        "content",
				DisplayName: "Content",
				Type:        TypeString,
				Required:    true,
				Default:     "",
				Description: "The HTML content of the post",
				ShowFor:     []string{"create"},
			},
			{
				Name:        "search",
				DisplayName: "Search Query",
				Type:        TypeString,
				Required:    true,
				Default:     "",
				Description: "The search query to find posts",
				ShowFor:     []string{"search"},
			},
			{
				Name:        "additionalFields",
				DisplayName: "Additional Fields",
				Type:        TypeCollection,
				Default:     map[string]any{},
				ShowFor:     []string{"create"},
				Fields: []Property{
					{Name: "author_name", DisplayName: "Author Name", Type: TypeString, Default: "",
						Description: "The name of the author (will create or find existing author by name)"},
					{Name: "category_names", DisplayName: "Category Names", Type: TypeString, Default: "",
						Description: "Comma separated list of category names to attach to your post"},
					{Name: "featured_image", DisplayName: "Featured Image URL", Type: TypeString, Default: ""},
					{Name: "keyword", DisplayName: "Keyword", Type: TypeString, Default: "",
						Description: "Primary SEO keyword for the post"},
					{Name: "seo_title", DisplayName: "SEO Title", Type: TypeString, Default: "",
						Description: "Meta title for SEO (defaults to post title)"},
					{Name: "seo_description", DisplayName: "SEO Description", Type: TypeString, Default: ""},
					{Name: "slug", DisplayName: "Slug", Type: TypeString, Default: "",
						Description: "URL slug for the post (generated from title if not provided)"},
					{Name: "status_id", DisplayName: "Status", Type: TypeOptions, Default: "",
						LoadOptions: LoadStatuses},
				},
			},
			{
				Name:        "searchFilters",
				DisplayName: "Filters",
				Type:        TypeCollection,
				Default:     map[string]any{},
				ShowFor:     []string{"search"},
				Fields: []Property{
					{
						Name:        "status",
						DisplayName: "Status",
						Type:        TypeOptions,
						Default:     "",
						Options: []Option{
							{Name: "Draft", Value: "draft"},
							{Name: "Published", Value: "published"},
						},
						Description: "Filter by post status",
					},
					{
						Name:        "limit",
						DisplayName: "Limit",
						Type:        TypeNumber,
						Default:     20,
						MinValue:    1,
						MaxValue:    50,
						Description: "Max number of results to return",
					},
				},
			},
		},
	}
}

// Trigger describes the publish-notification trigger node.
func Trigger() *Descriptor {
	return &Descriptor{
		Name:        TriggerName,
		DisplayName: "DropInBlog Trigger",
		Description: "Starts the workflow when a DropInBlog event occurs",
		Group:       "trigger",
		Version:     1,
		Credentials: []string{CredentialName},
		Webhooks: []Webhook{
			{Name: "default", HTTPMethod: "POST", Path: "webhook", ResponseMode: "onReceived"},
		},
		Properties: []Property{
			blogProperty("The blog to listen for events from"),
			{
				Name:        "event",
				DisplayName: "Event",
				Type:        TypeOptions,
				Required:    true,
				Default:     EventPostPublished,
				Options: []Option{
					{Name: "Post Published", Value: EventPostPublished, Description: "Triggers when a post is published"},
				},
				Description: "The event to listen for",
			},
		},
	}
}
