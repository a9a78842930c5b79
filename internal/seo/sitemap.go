package seo

import (
	"encoding/xml"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/model"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

var pathPrefix = map[string]string{
	model.SEOProduct:  "/products/",
	model.SEOCategory: "/categories/",
	model.SEOPage:     "/pages/",
}

// RenderSitemap builds the XML document with the storefront root first.
func RenderSitemap(baseURL string, entries []model.SitemapEntry) ([]byte, error) {
	set := urlSet{XMLNS: sitemapNS, URLs: []sitemapURL{{Loc: baseURL + "/"}}}
	for _, e := range entries {
		prefix, ok := pathPrefix[e.EntityType]
		if !ok {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     baseURL + prefix + e.Slug,
			LastMod: e.UpdatedAt.UTC().Format(time.DateOnly),
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
