package youtube

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"PT30S", 30 * time.Second},
		{"PT4M13S", 4*time.Minute + 13*time.Second},
		{"PT1H2M3S", time.Hour + 2*time.Minute + 3*time.Second},
		{"PT2H", 2 * time.Hour},
		{"P1DT2H", 26 * time.Hour},
		{"P2D", 48 * time.Hour},
		{"PT0S", 0},
	}

	for _, c := range cases {
		got, err := ParseISODuration(c.input)
		if err != nil {
			t.Errorf("ParseISODuration(%q) 应成功: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseISODuration(%q) 期望 %v，实际=%v", c.input, c.want, got)
		}
	}
}

func TestParseISODuration_Invalid(t *testing.T) {
	invalid := []string{"", "P", "4M13S", "PTM", "PT1X", "PT1H2M3", "P1M"}

	for _, s := range invalid {
		if _, err := ParseISODuration(s); err == nil {
			t.Errorf("ParseISODuration(%q) 应返回错误", s)
		}
	}
}

func TestVideoURL(t *testing.T) {
	v := Video{ID: "abc123"}
	if v.URL() != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("视频 URL 不正确: %s", v.URL())
	}

	p := Video{ID: "PLxyz", IsPlaylist: true}
	if p.URL() != "https://www.youtube.com/playlist?list=PLxyz" {
		t.Errorf("播放列表 URL 不正确: %s", p.URL())
	}
}
