package quota

import (
	"fmt"
	"time"
)

// FormatReset 将距配额重置的剩余时长渲染为人类可读的短语。
func FormatReset(until time.Duration) string {
	if until < time.Minute {
		return "less than a minute"
	}

	if until < time.Hour {
		minutes := int(until.Minutes())
		return fmt.Sprintf("%d %s", minutes, pluralize("minute", minutes))
	}

	hours := int(until.Hours())
	minutes := int(until.Minutes()) % 60
	if minutes == 0 {
		return fmt.Sprintf("%d %s", hours, pluralize("hour", hours))
	}
	return fmt.Sprintf("%d %s and %d %s",
		hours, pluralize("hour", hours),
		minutes, pluralize("minute", minutes))
}

func pluralize(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
