package idml

import (
	"testing"
)

func TestIsPlaceholderName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"[YOUR IMAGE HERE]", true},
		{"  [your image here] hero", true},
		{"[Image]", true},
		{"Logo Placeholder", true},
		{"PLACEHOLDER", true},
		{"", false},
		{"Hero image", false},
		{"[imag]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlaceholderName(tt.name); got != tt.want {
				t.Errorf("IsPlaceholderName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsEmbeddedHref(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"photo.jpg", true},
		{"  photo.jpg ", true},
		{"", false},
		{"file:photo.jpg", false},
		{"file:///Users/me/Links/photo.jpg", false},
		{"Links/photo.jpg", false},
		{`C:\images\photo.jpg`, false},
		{"http://example.com/a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := IsEmbeddedHref(tt.href); got != tt.want {
				t.Errorf("IsEmbeddedHref(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"", ""},
		{"photo.jpg", "photo.jpg"},
		{"file:///Users/me/Links/photo.jpg", "photo.jpg"},
		{"FILE:/Links/My%20Photo.png", "My Photo.png"},
		{`D:\work\Links\cover.tif`, "cover.tif"},
		{"file:bad%zz.png", "bad%zz.png"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := ResolveHref(tt.uri); got != tt.want {
				t.Errorf("ResolveHref(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestFindPlacedContent(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"direct", `<Rectangle Self="r"><Image Self="i"/></Rectangle>`, "Image"},
		{"under properties", `<Rectangle Self="r"><Properties><EPS Self="e"/></Properties></Rectangle>`, "EPS"},
		{"none", `<Rectangle Self="r"><Properties><PathGeometry/></Properties></Rectangle>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findPlacedContent(mustParse(t, tt.xml))
			if got.Tag() != tt.want {
				t.Errorf("findPlacedContent() tag = %q, want %q", got.Tag(), tt.want)
			}
		})
	}
}

func TestParsePlaced(t *testing.T) {
	images := imageIndex([]string{"Links/Photo.JPG", "Resources/x.png"})

	t.Run("link uri wins", func(t *testing.T) {
		n := mustParse(t, `<Image Self="i1" href="other.jpg" ActualPpi="72 72" EffectivePpi="144 144" ItemTransform="0.5 0 0 0.5 10 20">
			<Properties><GraphicBounds Left="0" Top="0" Right="200" Bottom="100"/></Properties>
			<Link Self="l1" LinkResourceURI="file:///Volumes/Work/Links/photo.jpg" StoredState="Normal"/>
		</Image>`)
		pc := parsePlaced(n, images)
		if pc.Href != "photo.jpg" || pc.Embedded {
			t.Errorf("href = %q embedded = %v", pc.Href, pc.Embedded)
		}
		if pc.PackagePath != "Links/Photo.JPG" {
			t.Errorf("package path = %q", pc.PackagePath)
		}
		if pc.Bounds == nil || pc.Bounds.Width != 200 || pc.Bounds.Height != 100 {
			t.Errorf("bounds = %+v", pc.Bounds)
		}
		if pc.Transform.A != 0.5 || pc.Transform.TY != 20 {
			t.Errorf("transform = %+v", pc.Transform)
		}
		if len(pc.ActualPPI) != 2 || pc.EffectivePPI[0] != 144 {
			t.Errorf("ppi = %v / %v", pc.ActualPPI, pc.EffectivePPI)
		}
	})

	t.Run("embedded", func(t *testing.T) {
		pc := parsePlaced(mustParse(t, `<Image Self="i2" href="inline.png"/>`), images)
		if !pc.Embedded || pc.Href != "inline.png" || pc.PackagePath != "" {
			t.Errorf("got %+v", pc)
		}
	})

	t.Run("stored state", func(t *testing.T) {
		pc := parsePlaced(mustParse(t, `<PDF Self="p"><Link LinkResourceURI="file:/a/b.pdf" StoredState="Embedded"/></PDF>`), images)
		if !pc.Embedded || pc.Type != "PDF" {
			t.Errorf("got %+v", pc)
		}
	})
}
