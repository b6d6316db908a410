package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectImageList(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		want    []string
	}{
		{
			name:    "empty collection falls back to cover",
			project: Project{Images: FlexFromString("[]"), Img: "cover.png"},
			want:    []string{"cover.png"},
		},
		{
			name:    "collection wins over cover",
			project: Project{Images: FlexFromString(`["a.png","b.png"]`), Img: "cover.png"},
			want:    []string{"a.png", "b.png"},
		},
		{
			name:    "absent collection falls back to cover",
			project: Project{Img: "cover.png"},
			want:    []string{"cover.png"},
		},
		{
			name:    "csv collection keeps order and duplicates",
			project: Project{Images: FlexFromString("b.png, a.png, b.png")},
			want:    []string{"b.png", "a.png", "b.png"},
		},
		{
			name:    "nothing at all",
			project: Project{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.project.ImageList()
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectDecode(t *testing.T) {
	row := `{
		"id": 7,
		"Title": "Portfolio",
		"Description": "Personal site",
		"Img": "cover.png",
		"Images": null,
		"TechStack": "[\"React\",\"Tailwind\"]",
		"Features": "Dark mode, Guestbook",
		"Github": "https://github.com/example/portfolio"
	}`

	var p Project
	require.NoError(t, json.Unmarshal([]byte(row), &p))

	assert.Equal(t, "7", p.Key())
	assert.Equal(t, []string{"React", "Tailwind"}, p.TechStackList())
	assert.Equal(t, []string{"Dark mode", "Guestbook"}, p.FeatureList())
	assert.Equal(t, []string{"cover.png"}, p.ImageList())
}

func TestProjectView_NormalizesFlexibleFields(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"Title":"Site","Img":"cover.png","Images":"","TechStack":"[\"React\",\"Go\"]","Features":"fast, small"}`), &p))

	out, err := json.Marshal(p.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"title":"Site","description":"","images":["cover.png"],"tech_stack":["React","Go"],"features":["fast","small"]}`, string(out))

	views := ProjectViews([]Project{p, {ID: 1}})
	require.Len(t, views, 2)
	assert.Equal(t, int64(1), views[1].ID)
	assert.Equal(t, []string{}, views[1].Features)
}
