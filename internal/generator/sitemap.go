package generator

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Route   string
	LastMod time.Time
}

// siteRoot returns the absolute prefix for generated URLs.
func siteRoot(baseURL, basePath string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	return base + normalizeBasePath(basePath)
}

func buildSitemap(baseURL, basePath string, entries []sitemapEntry) string {
	root := siteRoot(baseURL, basePath)

	locations := make(map[string]time.Time, len(entries))
	for _, entry := range entries {
		route := strings.TrimSpace(entry.Route)
		if route == "" {
			route = "/"
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		location := root + route
		if existing, ok := locations[location]; ok && !entry.LastMod.After(existing) {
			continue
		}
		locations[location] = entry.LastMod
	}

	sorted := make([]string, 0, len(locations))
	for location := range locations {
		sorted = append(sorted, location)
	}
	sort.Strings(sorted)

	var builder strings.Builder
	builder.WriteString(xml.Header)
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, location := range sorted {
		builder.WriteString("  <url>\n")
		builder.WriteString("    <loc>")
		_ = xml.EscapeText(&builder, []byte(location))
		builder.WriteString("</loc>\n")
		if lastMod := locations[location]; !lastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", lastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL, basePath string) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", siteRoot(baseURL, basePath), sitemapFileName))
	return builder.String()
}
