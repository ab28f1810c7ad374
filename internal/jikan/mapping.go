package jikan

import "strings"

// Summary is the denormalized provider record the tracker consumes.
// Every field already has its default applied; callers never see a
// partially-mapped value.
type Summary struct {
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleJapanese string   `json:"title_japanese,omitempty"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Score         float32  `json:"score"`
	Episodes      int      `json:"episodes"`
	Status        string   `json:"status"`
	Type          string   `json:"type"`
	AiredFrom     string   `json:"aired_from,omitempty"`
	AiredTo       string   `json:"aired_to,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Studios       []string `json:"studios,omitempty"`
}

// Defaults substituted for absent provider fields.
const (
	UnknownTitle  = "Unknown"
	UnknownStatus = "Unknown"
)

// ToSummary maps a raw provider block to a Summary, applying every
// documented default in one place. Pure; unit-tested without network.
func ToSummary(data AnimeData) Summary {
	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = strings.TrimSpace(data.TitleEnglish)
	}
	if title == "" {
		title = strings.TrimSpace(data.TitleJapanese)
	}
	if title == "" {
		title = UnknownTitle
	}

	status := strings.TrimSpace(data.Status)
	if status == "" {
		status = UnknownStatus
	}

	image := strings.TrimSpace(data.Images.JPG.LargeImageURL)
	if image == "" {
		image = strings.TrimSpace(data.Images.JPG.ImageURL)
	}

	score := data.Score
	if score < 0 {
		score = 0
	}
	episodes := data.Episodes
	if episodes < 0 {
		episodes = 0
	}

	return Summary{
		MalID:         data.MalID,
		Title:         title,
		TitleEnglish:  strings.TrimSpace(data.TitleEnglish),
		TitleJapanese: strings.TrimSpace(data.TitleJapanese),
		Description:   strings.TrimSpace(data.Synopsis),
		Image:         image,
		Score:         score,
		Episodes:      episodes,
		Status:        status,
		Type:          strings.TrimSpace(data.Type),
		AiredFrom:     strings.TrimSpace(data.Aired.From),
		AiredTo:       strings.TrimSpace(data.Aired.To),
		Genres:        names(data.Genres),
		Studios:       names(data.Studios),
	}
}

func names(in []struct {
	Name string `json:"name"`
}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if name := strings.TrimSpace(v.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
