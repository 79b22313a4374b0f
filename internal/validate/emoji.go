package validate

import (
	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

// ContainsEmoji 判断消息中是否至少存在一个 emoji 字素簇。
// 肤色修饰和 ZWJ 组合序列按单个字素簇计数。
func ContainsEmoji(message string) bool {
	g := uniseg.NewGraphemes(message)
	for g.Next() {
		if gomoji.ContainsEmoji(g.Str()) {
			return true
		}
	}
	return false
}

// ExtractEmojis 扫描消息并按首次出现顺序返回去重后的 emoji 列表。
// 提取与校验互相独立，消息合法时也可能只返回最低要求的那一个。
func ExtractEmojis(message string) []string {
	var (
		ordered []string
		seen    = make(map[string]struct{})
	)

	g := uniseg.NewGraphemes(message)
	for g.Next() {
		cluster := g.Str()
		if !gomoji.ContainsEmoji(cluster) {
			continue
		}
		if _, ok := seen[cluster]; ok {
			continue
		}
		seen[cluster] = struct{}{}
		ordered = append(ordered, cluster)
	}

	return ordered
}
