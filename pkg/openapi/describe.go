package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

const (
	// Version is the OpenAPI version emitted.
	Version = "3.0.3"
	// ConfigurationSchema names the component holding the document shape.
	ConfigurationSchema = "Configuration"
	// ExtValidator and ExtKind carry the settings rule and control kind of a
	// field.
	ExtValidator = "x-settingsform-validator"
	ExtKind      = "x-settingsform-kind"

	configurationRef = "#/components/schemas/" + ConfigurationSchema
)

// ErrNilSchema is returned when Describe receives no schema.
var ErrNilSchema = errors.New("openapi: schema is required")

// Options tunes the generated document.
type Options struct {
	ConfigPath string
	APIVersion string
	ServerURL  string
}

// Option mutates Options.
type Option func(*Options)

// WithConfigPath sets the configuration resource path (default "/config").
func WithConfigPath(path string) Option {
	return func(o *Options) {
		if strings.TrimSpace(path) != "" {
			o.ConfigPath = path
		}
	}
}

// WithAPIVersion sets info.version (default "1.0.0").
func WithAPIVersion(version string) Option {
	return func(o *Options) {
		if strings.TrimSpace(version) != "" {
			o.APIVersion = version
		}
	}
}

// WithServerURL adds a server entry.
func WithServerURL(raw string) Option {
	return func(o *Options) {
		o.ServerURL = strings.TrimSpace(raw)
	}
}

var textPolicy = bluemonday.StrictPolicy()

// Describe builds and validates the OpenAPI document for s.
func Describe(ctx context.Context, s *schema.Schema, options ...Option) (*openapi3.T, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	opts := Options{ConfigPath: "/config", APIVersion: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if !strings.HasPrefix(opts.ConfigPath, "/") {
		opts.ConfigPath = "/" + opts.ConfigPath
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		ConfigurationSchema: openapi3.NewSchemaRef("", Configuration(s)),
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   s.DisplayTitle(),
			Version: opts.APIVersion,
		},
		Components: &components,
		Paths:      openapi3.NewPaths(),
	}
	if opts.ServerURL != "" {
		doc.AddServer(&openapi3.Server{URL: opts.ServerURL})
	}

	shape := components.Schemas[ConfigurationSchema].Value
	doc.Paths.Set(opts.ConfigPath, configItem(shape))
	addButtons(doc.Paths, s, shape)

	if err := doc.Validate(ctx,
		openapi3.DisableExamplesValidation(),
		openapi3.DisableSchemaDefaultsValidation(),
		openapi3.DisableSchemaPatternValidation(),
	); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

func configItem(shape *openapi3.Schema) *openapi3.PathItem {
	ref := openapi3.NewSchemaRef(configurationRef, shape)

	get := openapi3.NewOperation()
	get.OperationID = "getConfiguration"
	get.Summary = "Read the configuration document"
	get.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Current configuration").WithJSONSchemaRef(ref),
		}),
	)

	post := openapi3.NewOperation()
	post.OperationID = "saveConfiguration"
	post.Summary = "Replace the configuration document"
	post.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
	post.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Saved"),
		}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Body is not a JSON object"),
		}),
	)

	item := &openapi3.PathItem{}
	item.SetOperation(http.MethodGet, get)
	item.SetOperation(http.MethodPost, post)
	return item
}

var operationMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// addButtons documents custom buttons that target a relative path. The first
// button declared for a path and method wins; absolute URLs are skipped.
func addButtons(paths *openapi3.Paths, s *schema.Schema, shape *openapi3.Schema) {
	add := func(scope string, index int, button schema.ButtonSpec) {
		if button.Behaviour() != schema.ButtonCustom {
			return
		}
		path, ok := relativePath(button.Endpoint)
		if !ok {
			return
		}
		method := strings.ToUpper(strings.TrimSpace(button.Method))
		if method == "" {
			method = http.MethodGet
		}
		if _, ok := operationMethods[method]; !ok {
			return
		}

		item := paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			paths.Set(path, item)
		}
		if item.GetOperation(method) != nil {
			return
		}

		op := openapi3.NewOperation()
		op.OperationID = "button_" + scope + "_" + strconv.Itoa(index)
		op.Summary = button.DisplayLabel()
		if button.Confirm != "" {
			op.Description = "Asks: " + button.Confirm
		}
		if method == http.MethodPost {
			switch {
			case button.IncludeForm:
				op.RequestBody = &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().WithRequired(true).
						WithJSONSchemaRef(openapi3.NewSchemaRef(configurationRef, shape)),
				}
			case button.Payload != nil:
				op.RequestBody = &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().WithRequired(true).
						WithJSONSchema(openapi3.NewSchema().WithDefault(button.Payload)),
				}
			}
		}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription(button.DisplayLabel() + " done"),
			}),
		)
		item.SetOperation(method, op)
	}

	for _, page := range s.Pages {
		for i, button := range page.Buttons {
			add(page.ID, i, button)
		}
	}
	for i, button := range s.Buttons() {
		add("default", i, button)
	}
}

func relativePath(endpoint string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.IsAbs() || u.Host != "" || u.Path == "" {
		return "", false
	}
	if strings.ContainsAny(u.Path, "{}") {
		return "", false
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "/" + u.Path, true
	}
	return u.Path, true
}

// Configuration returns the object schema of the collected document: dotted
// field names become nested objects and every leaf is required, since the
// mapper writes every field. A later field replaces an earlier scalar at the
// same path, as the mapper does.
func Configuration(s *schema.Schema) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	objects := map[*openapi3.Schema]bool{root: true}

	for _, def := range s.Fields() {
		segments := document.Segments(def.Name)
		current := root
		for _, segment := range segments[:len(segments)-1] {
			next := current.Properties[segment]
			if next == nil || next.Value == nil || !objects[next.Value] {
				child := openapi3.NewObjectSchema()
				objects[child] = true
				current.WithProperty(segment, child)
				current = child
				continue
			}
			current = next.Value
		}
		current.WithProperty(segments[len(segments)-1], fieldSchema(def))
	}

	for object := range objects {
		names := make([]string, 0, len(object.Properties))
		for name := range object.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		object.WithRequired(names)
	}
	root.Title = s.DisplayTitle()
	return root
}

func fieldSchema(def schema.FieldDefinition) *openapi3.Schema {
	var out *openapi3.Schema
	kind := def.Kind()

	switch kind {
	case schema.KindCheckbox, schema.KindSwitch:
		out = openapi3.NewBoolSchema()
		if value, ok := def.Default.(bool); ok {
			out.WithDefault(value)
		}
	case schema.KindNumber:
		out = openapi3.NewFloat64Schema().WithNullable()
		if def.Min != nil {
			out.WithMin(*def.Min)
		}
		if def.Max != nil {
			out.WithMax(*def.Max)
		}
		if value, ok := def.Default.(float64); ok {
			out.WithDefault(value)
		}
	case schema.KindSelect:
		out = openapi3.NewStringSchema()
		if len(def.Options) > 0 {
			values := make([]any, 0, len(def.Options))
			for _, option := range def.Options {
				values = append(values, option.Value)
			}
			out.WithEnum(values...)
		}
		if value, ok := def.Default.(string); ok {
			out.WithDefault(value)
		}
	default:
		out = openapi3.NewStringSchema()
		if def.MinLength != nil {
			out.WithMinLength(int64(*def.MinLength))
		}
		if def.MaxLength != nil {
			out.WithMaxLength(int64(*def.MaxLength))
		}
		if def.Pattern != "" {
			out.WithPattern(def.Pattern)
		}
		if kind == schema.KindPassword {
			out.WithFormat("password")
		}
		switch def.Validator {
		case schema.ValidatorIP:
			out.WithFormat("ipv4")
		case schema.ValidatorURL:
			out.WithFormat("uri")
		}
		if value, ok := def.Default.(string); ok {
			out.WithDefault(value)
		}
	}

	out.Title = def.DisplayLabel()
	if def.Help != "" {
		out.Description = html.UnescapeString(textPolicy.Sanitize(def.Help))
	}
	out.Extensions = map[string]any{ExtKind: string(kind)}
	if def.Validator != "" {
		out.Extensions[ExtValidator] = string(def.Validator)
	}
	return out
}

// Format selects the serialisation of Marshal.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Marshal encodes doc as indented JSON or as YAML.
func Marshal(doc *openapi3.T, format Format) ([]byte, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON, "":
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("openapi: encode json: %w", err)
		}
		return append(raw, '\n'), nil
	case FormatYAML, "yml":
		raw, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("openapi: encode yaml: %w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("openapi: unknown format %q", format)
	}
}
