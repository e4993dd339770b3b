package seo

import (
	"strings"
	"testing"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
)

func TestSitemapBuilder(t *testing.T) {
	b := NewSitemapBuilder("https://iklimsesi.org")
	b.AddHomepage()
	b.AddItems([]model.ContentItem{
		{Kind: model.KindPost, Slug: "iklim-raporu", UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{Kind: model.KindVoice, Slug: "genclerin-sesi"},
		{Kind: model.KindPage, Slug: "hakkimizda"},
	})

	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}

	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	xml := string(data)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		XMLNamespace,
		"<loc>https://iklimsesi.org</loc>",
		"<loc>https://iklimsesi.org/blog/iklim-raporu</loc>",
		"<loc>https://iklimsesi.org/voices/genclerin-sesi</loc>",
		"<loc>https://iklimsesi.org/hakkimizda</loc>",
		"<lastmod>2026-03-01T10:00:00Z</lastmod>",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("sitemap missing %q:\n%s", want, xml)
		}
	}
}

func TestSitemapPriorities(t *testing.T) {
	b := NewSitemapBuilder("https://iklimsesi.org")
	b.AddItem(model.ContentItem{Kind: model.KindPost, Slug: "p"})
	b.AddItem(model.ContentItem{Kind: model.KindVoice, Slug: "v"})

	if b.urls[0].Priority != "0.8" {
		t.Errorf("post priority = %s, want 0.8", b.urls[0].Priority)
	}
	if b.urls[1].Priority != "0.6" {
		t.Errorf("voice priority = %s, want 0.6", b.urls[1].Priority)
	}
}

func TestSitemapOmitsEmptyLastMod(t *testing.T) {
	b := NewSitemapBuilder("https://iklimsesi.org")
	b.AddItem(model.ContentItem{Kind: model.KindPost, Slug: "eski"})

	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(string(data), "<lastmod>") {
		t.Error("zero UpdatedAt should omit lastmod")
	}
}
