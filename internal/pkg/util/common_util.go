package util

import (
	"strings"
)

const likeEscape = '!'

var nameQuoteReplacer = strings.NewReplacer(`"`, "", "“", "", "”", "")

// LikeContains 构造 LIKE '%kw%' 模式，配合 ESCAPE '!' 使用
func LikeContains(keyword string) string {
	var b strings.Builder
	b.Grow(len(keyword) + 2)
	b.WriteByte('%')
	for _, r := range keyword {
		if r == '%' || r == '_' || r == likeEscape {
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}

// StripNameQuotes 去除干员、动作名称中的中英文双引号
func StripNameQuotes(name string) string {
	return nameQuoteReplacer.Replace(name)
}

// SplitOperators 解析逗号分隔的干员列表，~ 前缀表示排除
func SplitOperators(raw string) (include, exclude []string) {
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if name, ok := strings.CutPrefix(item, "~"); ok {
			if name = strings.TrimSpace(name); name != "" {
				exclude = append(exclude, name)
			}
			continue
		}
		include = append(include, item)
	}
	return include, exclude
}

// PtrUint64 用于将 uint64 转换为 *uint64
func PtrUint64(i uint64) *uint64 {
	return &i
}

// PtrStr 用于将 string 转换为 *string
func PtrStr(s string) *string {
	return &s
}

// PtrFloat32 用于将 float32 转换为 *float32
func PtrFloat32(f float32) *float32 {
	return &f
}
