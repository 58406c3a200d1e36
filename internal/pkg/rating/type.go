package rating

import (
	"errors"
	"strings"
)

// Type 单个用户对作业的评价，数值即前端展示值
type Type int8

const (
	None Type = iota
	Like
	Dislike
)

var ErrInvalidType = errors.New("invalid rating type")

// Parse 解析请求中的评价，大小写不敏感
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like":
		return Like, nil
	case "dislike":
		return Dislike, nil
	case "none", "":
		return None, nil
	default:
		return None, ErrInvalidType
	}
}

// FromLegacy 旧版评分数组中的字符串，未知值视为 None
func FromLegacy(s string) Type {
	switch s {
	case "Like":
		return Like
	case "Dislike":
		return Dislike
	default:
		return None
	}
}

func (t Type) String() string {
	switch t {
	case Like:
		return "Like"
	case Dislike:
		return "Dislike"
	default:
		return "None"
	}
}

// Display 0 = None, 1 = Like, 2 = Dislike
func (t Type) Display() int {
	return int(t)
}

func (t Type) Valid() bool {
	return t >= None && t <= Dislike
}
