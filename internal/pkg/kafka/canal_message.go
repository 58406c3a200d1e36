package kafka

import (
	"fmt"
	"strconv"
)

const (
	CanalInsert = "INSERT"
	CanalUpdate = "UPDATE"
	CanalDelete = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据，仅包含发生变化的列
	Old []map[string]interface{} `json:"old"`

	// 字段类型元数据
	SqlType   map[string]int    `json:"sqlType"`   // JDBC 类型 ID
	MysqlType map[string]string `json:"mysqlType"` // MySQL 类型描述
}

// OldRow 第 i 行变更前的列，不存在时返回 nil
func (m *CanalMessage) OldRow(i int) map[string]interface{} {
	if i < 0 || i >= len(m.Old) {
		return nil
	}
	return m.Old[i]
}

// ToInt64 canal 以字符串形式传递列值
func ToInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case string:
		return strconv.ParseInt(val, 10, 64)
	case float64:
		return int64(val), nil
	case int64:
		return val, nil
	case nil:
		return 0, fmt.Errorf("nil value")
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToBool tinyint(1) 列的取值
func ToBool(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == "1" || val == "true"
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return false
	}
}
