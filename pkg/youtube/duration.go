package youtube

import (
	"fmt"
	"strconv"
	"time"
)

// ParseISODuration 解析 YouTube API 返回的 ISO-8601 时长
// 支持 PT4M13S、PT1H2M3S、P1DT2H 等形式；不支持年/月单位
func ParseISODuration(s string) (time.Duration, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("无效的 ISO-8601 时长: %q", s)
	}

	var total time.Duration
	inTime := false
	num := ""

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
		default:
			if num == "" {
				return 0, fmt.Errorf("无效的 ISO-8601 时长: %q", s)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("无效的 ISO-8601 时长: %q", s)
			}
			num = ""

			switch {
			case r == 'D' && !inTime:
				total += time.Duration(n) * 24 * time.Hour
			case r == 'H' && inTime:
				total += time.Duration(n) * time.Hour
			case r == 'M' && inTime:
				total += time.Duration(n) * time.Minute
			case r == 'S' && inTime:
				total += time.Duration(n) * time.Second
			default:
				return 0, fmt.Errorf("不支持的时长单位 %q: %q", string(r), s)
			}
		}
	}

	if num != "" {
		return 0, fmt.Errorf("无效的 ISO-8601 时长: %q", s)
	}

	return total, nil
}
