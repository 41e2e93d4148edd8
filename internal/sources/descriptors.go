package sources

import "toksmith/internal/content"

// Descriptor describes what input a source expects.
type Descriptor struct {
	Name         content.Source `json:"name"`
	Description  string         `json:"description"`
	RequiresURL  bool           `json:"requires_url"`
	RequiresText bool           `json:"requires_text"`
	RequiresFile bool           `json:"requires_file"`
	Available    bool           `json:"available"`
}

var descriptions = map[content.Source]Descriptor{
	content.SourceReddit:        {Description: "Reddit posts and comments", RequiresURL: true},
	content.SourceTwitter:       {Description: "Twitter/X threads", RequiresURL: true},
	content.SourceStackOverflow: {Description: "StackOverflow questions and answers", RequiresURL: true},
	content.SourceScript:        {Description: "Custom script text", RequiresText: true},
	content.SourcePodcast:       {Description: "Podcast audio transcript", RequiresFile: true},
}

// Sources lists all known sources. Available is true for URL sources with a
// registered adapter and for direct script text.
func (r *Registry) Sources() []Descriptor {
	out := make([]Descriptor, 0, len(descriptions))
	for _, source := range content.AllSources() {
		d := descriptions[source]
		d.Name = source
		switch {
		case d.RequiresURL:
			_, d.Available = r.Adapter(source)
		case source == content.SourceScript:
			d.Available = true
		}
		out = append(out, d)
	}
	return out
}
