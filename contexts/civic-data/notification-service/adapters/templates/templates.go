package templates

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/notification-service/domain/errors"
	"openknesset/contexts/civic-data/notification-service/ports"
)

//go:embed defaults
var defaultTemplates embed.FS

// Renderer renders digest fragments from a template tree. Text and HTML
// variants of each fragment live side by side as <name>.txt and <name>.html;
// every file is parsed under its full path so same-named files in different
// directories (the per-verb action templates) stay distinct.
type Renderer struct {
	text map[string]*texttemplate.Template
	html map[string]*htmltemplate.Template

	siteDomain string
}

// NewRenderer builds a renderer over the embedded default templates. The
// defaults are validated at startup, so parse failures panic.
func NewRenderer(siteDomain string) *Renderer {
	sub, err := fs.Sub(defaultTemplates, "defaults")
	if err != nil {
		panic(fmt.Sprintf("digest templates: %v", err))
	}
	renderer, err := NewRendererFromFS(sub, siteDomain)
	if err != nil {
		panic(fmt.Sprintf("digest templates: %v", err))
	}
	return renderer
}

// NewRendererFromFS builds a renderer over an arbitrary template tree, used
// by tests and deployments that override the defaults.
func NewRendererFromFS(fsys fs.FS, siteDomain string) (*Renderer, error) {
	renderer := &Renderer{
		text:       make(map[string]*texttemplate.Template),
		html:       make(map[string]*htmltemplate.Template),
		siteDomain: siteDomain,
	}
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		content := strings.TrimRight(string(raw), "\n")
		switch {
		case strings.HasSuffix(path, ".txt"):
			parsed, err := texttemplate.New(path).Parse(content)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			renderer.text[path] = parsed
		case strings.HasSuffix(path, ".html"):
			parsed, err := htmltemplate.New(path).Parse(content)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			renderer.html[path] = parsed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renderer, nil
}

// SectionTitle resolves a bucket's section heading. A missing section
// template falls back to a static title rather than failing the digest.
func (r *Renderer) SectionTitle(bucket entities.EntityType) (string, string) {
	name := fmt.Sprintf("notify/%s_section", bucket)
	text, textErr := r.renderText(nil, name+".txt")
	html, htmlErr := r.renderHTML(nil, name+".html")
	if textErr != nil || htmlErr != nil {
		fallback := sectionFallback(bucket)
		return fallback, "<h2>" + fallback + "</h2>"
	}
	return text, html
}

// EntityHeader renders the heading shown above one entity's actions, trying
// the type-specific template before the generic model header.
func (r *Renderer) EntityHeader(entity entities.FollowedEntity) (string, string, error) {
	data := struct {
		Entity entities.FollowedEntity
		Domain string
	}{Entity: entity, Domain: r.siteDomain}

	specific := fmt.Sprintf("notify/%s_header", entity.Type)
	text, err := r.renderText(data, specific+".txt", "notify/model_header.txt")
	if err != nil {
		return "", "", err
	}
	html, err := r.renderHTML(data, specific+".html", "notify/model_header.html")
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}

// ActionFragment renders one action, trying the verb-specific template
// (spaces in the verb become underscores) before the generic one.
func (r *Renderer) ActionFragment(action entities.Action) (string, string, error) {
	data := struct {
		Action entities.Action
		Domain string
	}{Action: action, Domain: r.siteDomain}

	verb := strings.ReplaceAll(action.Verb, " ", "_")
	specific := fmt.Sprintf("activity/%s/action_email", verb)
	text, err := r.renderText(data, specific+".txt", "activity/action_email.txt")
	if err != nil {
		return "", "", err
	}
	html, err := r.renderHTML(data, specific+".html", "activity/action_email.html")
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}

func (r *Renderer) Header(recipient entities.Recipient) (string, string, error) {
	return r.frame(recipient, "notify/header")
}

func (r *Renderer) Footer(recipient entities.Recipient) (string, string, error) {
	return r.frame(recipient, "notify/footer")
}

func (r *Renderer) frame(recipient entities.Recipient, name string) (string, string, error) {
	data := struct {
		User   entities.Recipient
		Domain string
	}{User: recipient, Domain: r.siteDomain}

	text, err := r.renderText(data, name+".txt")
	if err != nil {
		return "", "", err
	}
	html, err := r.renderHTML(data, name+".html")
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}

// renderText renders the first template that exists among names.
func (r *Renderer) renderText(data any, names ...string) (string, error) {
	for _, name := range names {
		parsed, ok := r.text[name]
		if !ok {
			continue
		}
		var buf strings.Builder
		if err := parsed.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("%w: %s", domainerrors.ErrTemplateNotFound, strings.Join(names, ", "))
}

func (r *Renderer) renderHTML(data any, names ...string) (string, error) {
	for _, name := range names {
		parsed, ok := r.html[name]
		if !ok {
			continue
		}
		var buf strings.Builder
		if err := parsed.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("%w: %s", domainerrors.ErrTemplateNotFound, strings.Join(names, ", "))
}

func sectionFallback(bucket entities.EntityType) string {
	switch bucket {
	case entities.EntityTypeMember:
		return "Followed MKs"
	case entities.EntityTypeAgenda:
		return "Followed Agendas"
	default:
		return "Other Updates"
	}
}

var _ ports.DigestRenderer = (*Renderer)(nil)
