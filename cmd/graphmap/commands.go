package main

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/apierror"
	"github.com/reoring/graphmap/jsonschema"
	"github.com/reoring/graphmap/node"
	"github.com/reoring/graphmap/webhook"
)

type classifyReport struct {
	Shape     string `graph:"shape" yaml:"shape"`
	Kind      string `graph:"kind" yaml:"kind,omitempty"`
	Type      string `graph:"type" yaml:"type,omitempty"`
	Code      *int   `graph:"code" yaml:"code,omitempty"`
	Subcode   *int   `graph:"subcode" yaml:"subcode,omitempty"`
	Status    int    `graph:"status" yaml:"status,omitempty"`
	Message   string `graph:"message" yaml:"message,omitempty"`
	TraceID   string `graph:"fbtrace_id" yaml:"fbtrace_id,omitempty"`
	Transient bool   `graph:"transient" yaml:"transient,omitempty"`
	Retryable bool   `graph:"retryable" yaml:"retryable,omitempty"`
	Error     string `graph:"error" yaml:"error,omitempty"`
}

func (a *app) classifyCmd(args []string) error {
	fs := a.newFlagSet("classify")
	var cf commonFlags
	cf.register(fs)
	status := fs.Int("status", 200, "HTTP status of the response")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := a.setup(&cf)
	if err != nil {
		return err
	}
	body, err := a.readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	c := apierror.NewClassifier(apierror.WithLogger(logger), apierror.WithParseOpt(cfg.ParseOpt()))
	d, shape, ok := c.Classify(string(body), *status)
	rep := classifyReport{Shape: shape.String()}
	if ok {
		apiErr := apierror.ErrorFor(shape, d)
		rep.Kind = kindOf(apiErr)
		rep.Type = d.Type()
		if code, has := d.Code(); has {
			rep.Code = &code
		}
		if sub, has := d.Subcode(); has {
			rep.Subcode = &sub
		}
		rep.Status = d.HTTPStatus()
		rep.Message = d.Message()
		rep.TraceID = d.TraceID()
		rep.Transient = apierror.IsTransient(apiErr)
		rep.Retryable = apierror.Retryable(apiErr)
		rep.Error = apiErr.Error()
	}
	return a.emit(cf.format, rep)
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, apierror.ErrOAuth):
		return "oauth"
	case errors.Is(err, apierror.ErrQuery):
		return "query"
	case errors.Is(err, apierror.ErrInstagram):
		return "instagram"
	case errors.Is(err, apierror.ErrResponseStatus):
		return "response_status"
	case errors.Is(err, apierror.ErrGraph):
		return "graph"
	}
	return ""
}

type changeReport struct {
	Entry string     `graph:"entry" yaml:"entry"`
	Field string     `graph:"field" yaml:"field"`
	Verb  string     `graph:"verb" yaml:"verb,omitempty"`
	Key   string     `graph:"key" yaml:"key"`
	Shape string     `graph:"shape" yaml:"shape"`
	Value node.Value `graph:"value" yaml:"value"`
	Error string     `graph:"error,omitempty" yaml:"error,omitempty"`
}

type webhookReport struct {
	Object    string         `graph:"object" yaml:"object"`
	Changes   []changeReport `graph:"changes" yaml:"changes"`
	Messaging int            `graph:"messaging" yaml:"messaging,omitempty"`
}

func (a *app) webhookCmd(args []string) error {
	fs := a.newFlagSet("webhook")
	var cf commonFlags
	cf.register(fs)
	dump := fs.Bool("dump", false, "dump the decoded notification instead of a summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := a.setup(&cf)
	if err != nil {
		return err
	}
	body, err := a.readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	m := graphmap.New(cfg.MapperOptions(logger))
	r := webhook.NewResolver(webhook.WithLogger(logger), webhook.WithMapper(m))
	n, err := r.ParseNotification(body)
	if err != nil {
		return fmt.Errorf("at %s: %w", graphmap.DisplayPath(pathOf(err)), err)
	}
	if *dump {
		cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		cs.Fdump(a.stdout, n)
		return nil
	}

	rep := webhookReport{Object: n.Object}
	for _, e := range n.Entries.All() {
		if e == nil {
			continue
		}
		rep.Messaging += e.Messaging.Len()
		for _, ch := range e.Changes.All() {
			if ch == nil || ch.Value == nil {
				continue
			}
			v, err := m.Encode(ch.Value)
			if err != nil {
				return err
			}
			c := changeReport{
				Entry: e.ID,
				Field: ch.Field,
				Verb:  ch.Verb,
				Key:   ch.Value.ChangeKey(),
				Shape: shapeName(ch.Value),
				Value: v,
			}
			if ch.Err != nil {
				c.Error = ch.Err.Error()
			}
			rep.Changes = append(rep.Changes, c)
		}
	}
	return a.emit(cf.format, rep)
}

func pathOf(err error) string {
	if e, ok := graphmap.AsError(err); ok {
		return e.Path
	}
	return ""
}

func shapeName(v webhook.ChangeValue) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// schemaCmd lists the registered discriminator keys, or prints the JSON
// Schema of the shape registered under the given key.
func (a *app) schemaCmd(args []string) error {
	fs := a.newFlagSet("schema")
	var cf commonFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, _, err := a.setup(&cf); err != nil {
		return err
	}
	reg := webhook.DefaultRegistry()
	key := fs.Arg(0)
	if key == "" {
		return a.emit(cf.format, reg.Keys())
	}
	f, ok := reg.Lookup(key)
	if !ok {
		return fmt.Errorf("no shape registered for %q", key)
	}
	s, err := jsonschema.For(reflect.TypeOf(f()))
	if err != nil {
		return err
	}
	return a.emit(cf.format, s)
}

func (a *app) fmtCmd(args []string) error {
	fs := a.newFlagSet("fmt")
	var cf commonFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, logger, err := a.setup(&cf)
	if err != nil {
		return err
	}
	body, err := a.readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	v, err := graphmap.New(cfg.MapperOptions(logger)).Parse(body)
	if err != nil {
		return err
	}
	if cf.format == "yaml" {
		return a.emitYAML(v.YAML())
	}
	_, err = fmt.Fprintln(a.stdout, node.Stringify(v))
	return err
}

func (a *app) emit(format string, v any) error {
	if format == "yaml" {
		return a.emitYAML(v)
	}
	b, err := graphmap.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}

func (a *app) emitYAML(v any) error {
	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
