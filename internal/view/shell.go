// Package view composes pages from fragments: two chrome components
// (sidebar, header) plus one section in the main container.
package view

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"strings"
	"sync"

	"concerthub-api/internal/fragment"
)

// Container ids.
const (
	SidebarContainer = "sidebar-container"
	HeaderContainer  = "header-container"
	MainContainer    = "main-content"
)

// Sections that can be shown in the main container.
const (
	SectionHome     = "home"
	SectionWishlist = "wishlist"
	SectionOrders   = "orders"
	SectionSettings = "settings"
	SectionCheckout = "checkout"
)

var pageTitles = map[string]string{
	SectionHome:     "Upcoming Concerts",
	SectionWishlist: "My Wishlist",
	SectionOrders:   "My Orders",
	SectionSettings: "Settings",
}

const defaultTitle = "ConcertHub"

// ErrUnknownSection is returned by Navigate for names outside the section
// set.
var ErrUnknownSection = errors.New("unknown section")

// ValidSection reports whether name is a navigable section.
func ValidSection(name string) bool {
	switch name {
	case SectionHome, SectionWishlist, SectionOrders, SectionSettings, SectionCheckout:
		return true
	}
	return false
}

// Title returns the page title for a section.
func Title(section string) string {
	if t, ok := pageTitles[section]; ok {
		return t
	}
	return defaultTitle
}

// SearchVisible reports whether the header search bar is shown.
func SearchVisible(section string) bool {
	return section != SectionSettings
}

// Page is a fully composed document.
type Page struct {
	Title         string
	Section       string
	SearchVisible bool
	Sidebar       template.HTML
	Header        template.HTML
	Main          template.HTML
}

// Shell owns the three containers of one page.
type Shell struct {
	loader *fragment.Loader
	params fragment.Params

	Sidebar *fragment.Container
	Header  *fragment.Container
	Main    *fragment.Container
}

// NewShell creates a shell. params reach every binding; the section is
// added by Start and Navigate.
func NewShell(loader *fragment.Loader, params fragment.Params) *Shell {
	p := make(fragment.Params, len(params)+1)
	for k, v := range params {
		p[k] = v
	}
	return &Shell{
		loader:  loader,
		params:  p,
		Sidebar: fragment.NewContainer(SidebarContainer),
		Header:  fragment.NewContainer(HeaderContainer),
		Main:    fragment.NewContainer(MainContainer),
	}
}

func (s *Shell) withSection(section string) fragment.Params {
	p := make(fragment.Params, len(s.params)+1)
	for k, v := range s.params {
		p[k] = v
	}
	p["section"] = section
	return p
}

// Start loads the sidebar and header concurrently, both rendered for
// section.
func (s *Shell) Start(ctx context.Context, section string) error {
	p := s.withSection(section)
	jobs := []struct {
		c    *fragment.Container
		name string
	}{
		{s.Sidebar, "components/sidebar"},
		{s.Header, "components/header"},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.loader.Load(ctx, job.c, job.name, p); err != nil {
				errs[i] = fmt.Errorf("%s: %w", job.c.ID, err)
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Navigate loads a section into the main container.
func (s *Shell) Navigate(ctx context.Context, section string) error {
	if !ValidSection(section) {
		return fmt.Errorf("%q: %w", section, ErrUnknownSection)
	}
	return s.loader.Load(ctx, s.Main, "section/"+section, s.withSection(section))
}

// Section returns the section currently mounted in the main container.
func (s *Shell) Section() string {
	name, _ := s.Main.Content()
	return strings.TrimPrefix(name, "section/")
}

// Page waits for every container to mount and composes the document.
func (s *Shell) Page(ctx context.Context) (Page, error) {
	for _, c := range []*fragment.Container{s.Sidebar, s.Header, s.Main} {
		if err := c.Wait(ctx); err != nil {
			return Page{}, fmt.Errorf("waiting for %s: %w", c.ID, err)
		}
	}

	section := s.Section()
	_, sidebar := s.Sidebar.Content()
	_, header := s.Header.Content()
	_, main := s.Main.Content()
	return Page{
		Title:         Title(section),
		Section:       section,
		SearchVisible: SearchVisible(section),
		Sidebar:       sidebar,
		Header:        header,
		Main:          main,
	}, nil
}

// Layout renders a Page into the document skeleton.
type Layout struct {
	tmpl *template.Template
}

// LoadLayout parses layout.html from fsys.
func LoadLayout(fsys fs.FS) (*Layout, error) {
	data, err := fs.ReadFile(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	tmpl, err := template.New("layout.html").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing layout template: %w", err)
	}
	return &Layout{tmpl: tmpl}, nil
}

// Render writes the page.
func (l *Layout) Render(w io.Writer, p Page) error {
	if err := l.tmpl.ExecuteTemplate(w, "layout", p); err != nil {
		log.Printf("[View] Failed to render layout for %s: %v", p.Section, err)
		return err
	}
	return nil
}
