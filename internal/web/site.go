// Package web serves the TechCorp marketing pages.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

// Product is a catalog entry rendered on the home and products pages.
type Product struct {
	Name        string
	Tagline     string
	Description string
	Price       string
}

// Catalog returns the products the site advertises.
func Catalog() []Product {
	return []Product{
		{
			Name:        "CloudForce Enterprise",
			Tagline:     "Cloud infrastructure that scales with you.",
			Description: "Cloud infrastructure management platform with auto-scaling, monitoring, and cost optimization.",
			Price:       "From $299/month",
		},
		{
			Name:        "DataInsight Analytics",
			Tagline:     "Turn raw data into decisions.",
			Description: "Business intelligence and analytics suite with real-time dashboards and predictive modeling.",
			Price:       "From $199/month",
		},
		{
			Name:        "SecureConnect VPN",
			Tagline:     "Zero-trust access for distributed teams.",
			Description: "Enterprise VPN with zero-trust network access for distributed teams.",
			Price:       "From $99/month",
		},
		{
			Name:        "WorkflowPro Automation",
			Tagline:     "Automate the busywork.",
			Description: "Workflow automation for repetitive business processes, with a no-code builder.",
			Price:       "From $149/month",
		},
		{
			Name:        "MobileFirst Development",
			Tagline:     "Your app, on every platform.",
			Description: "Cross-platform mobile app development platform and toolchain.",
			Price:       "From $399/month",
		},
		{
			Name:        "AI Assist Platform",
			Tagline:     "Machine learning without the ceremony.",
			Description: "Machine learning platform for building intelligent applications and chatbots.",
			Price:       "Custom pricing",
		},
	}
}

type pageData struct {
	Title    string
	Active   string
	Products []Product
}

// Site renders the marketing pages from embedded templates.
type Site struct {
	tmpl   *template.Template
	logger *slog.Logger
}

func NewSite(logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Site{tmpl: tmpl, logger: logger}, nil
}

// Register mounts the page routes on the router.
func (s *Site) Register(r chi.Router) {
	r.Get("/", s.page("home.html", "TechCorp", "home"))
	r.Get("/products", s.page("products.html", "Products", "products"))
	r.Get("/about", s.page("about.html", "About", "about"))
	r.Get("/contact", s.page("contact.html", "Contact", "contact"))
	r.Get("/faq", s.page("faq.html", "FAQ", "faq"))
	r.Get("/support", s.page("support.html", "Support", "support"))
}

func (s *Site) page(name, title, active string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Title: title, Active: active, Products: Catalog()}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
			s.logger.Error("render page", "page", name, "error", err)
		}
	}
}
