package types

import "strconv"

// Project is a portfolio project row. Projects are owned by the table
// service; this module only reads them.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"Title"`
	Description string    `json:"Description"`
	Img         string    `json:"Img,omitempty"`
	Images      FlexField `json:"Images"`
	TechStack   FlexField `json:"TechStack"`
	Features    FlexField `json:"Features"`
	Github      string    `json:"Github,omitempty"`
}

// Key returns the project id in the form used by routes and select-by-id.
func (p Project) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// TechStackList returns the normalized tech stack.
func (p Project) TechStackList() []string {
	return ParseFlexible(p.TechStack)
}

// FeatureList returns the normalized feature list.
func (p Project) FeatureList() []string {
	return ParseFlexible(p.Features)
}

// ImageList returns the project's images in source order. The singular Img
// is used only when the Images collection normalizes to nothing; the two
// fields are never mixed.
func (p Project) ImageList() []string {
	images := ParseFlexible(p.Images)
	if len(images) == 0 && p.Img != "" {
		return []string{p.Img}
	}
	return images
}

// ProjectView is a project with its flexible fields normalized, the shape
// served to readers.
type ProjectView struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	TechStack   []string `json:"tech_stack"`
	Features    []string `json:"features"`
	Github      string   `json:"github,omitempty"`
}

// View normalizes p.
func (p Project) View() ProjectView {
	return ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Images:      p.ImageList(),
		TechStack:   p.TechStackList(),
		Features:    p.FeatureList(),
		Github:      p.Github,
	}
}

// ProjectViews normalizes each project, keeping order.
func ProjectViews(projects []Project) []ProjectView {
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.View())
	}
	return out
}
