package generator

import (
	"path"
	"strings"
)

const (
	indexRoute      = "/"
	sitemapFileName = "sitemap.xml"
	robotsFileName  = "robots.txt"
)

func documentRoute(identifier string) string {
	return "/" + identifier + "/"
}

func sectionRoute(identifier, slug string) string {
	return "/" + identifier + "/" + slug + "/"
}

// outputPath maps a route to the file that serves it, relative to the
// output root.
func outputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

// link prefixes route with the site's base path.
func link(basePath, route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return basePath + route
}

func normalizeBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}
