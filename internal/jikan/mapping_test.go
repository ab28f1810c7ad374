package jikan

import "testing"

func TestToSummary_Defaults(t *testing.T) {
	s := ToSummary(AnimeData{MalID: 42})

	if s.Title != UnknownTitle {
		t.Fatalf("expected default title, got %q", s.Title)
	}
	if s.Status != UnknownStatus {
		t.Fatalf("expected default status, got %q", s.Status)
	}
	if s.Score != 0 || s.Episodes != 0 {
		t.Fatalf("expected zero score/episodes, got %+v", s)
	}
	if len(s.Genres) != 0 || len(s.Studios) != 0 {
		t.Fatalf("expected empty genre/studio lists, got %+v", s)
	}
}

func TestToSummary_TitleFallbackChain(t *testing.T) {
	s := ToSummary(AnimeData{TitleEnglish: "English Title"})
	if s.Title != "English Title" {
		t.Fatalf("expected english fallback, got %q", s.Title)
	}

	s = ToSummary(AnimeData{TitleJapanese: "日本語"})
	if s.Title != "日本語" {
		t.Fatalf("expected japanese fallback, got %q", s.Title)
	}
}

func TestToSummary_ImageFallback(t *testing.T) {
	var d AnimeData
	d.Images.JPG.ImageURL = "http://img/small.jpg"
	if got := ToSummary(d).Image; got != "http://img/small.jpg" {
		t.Fatalf("expected small image fallback, got %q", got)
	}

	d.Images.JPG.LargeImageURL = "http://img/large.jpg"
	if got := ToSummary(d).Image; got != "http://img/large.jpg" {
		t.Fatalf("expected large image preferred, got %q", got)
	}
}

func TestToSummary_TrimsAndFilters(t *testing.T) {
	d := AnimeData{Title: "  Cowboy Bebop  ", Synopsis: " space jazz "}
	d.Genres = append(d.Genres, struct {
		Name string `json:"name"`
	}{Name: " Action "}, struct {
		Name string `json:"name"`
	}{Name: ""})

	s := ToSummary(d)
	if s.Title != "Cowboy Bebop" || s.Description != "space jazz" {
		t.Fatalf("expected trimmed fields, got %+v", s)
	}
	if len(s.Genres) != 1 || s.Genres[0] != "Action" {
		t.Fatalf("expected blank genres filtered, got %v", s.Genres)
	}
}
