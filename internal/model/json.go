package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray 以JSON数组形式存储的字符串列表
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// ExamPoint 考点及其重要程度(1-5)
type ExamPoint struct {
	Point      string `json:"point"`
	Importance int    `json:"importance"`
}

type ExamPointList []ExamPoint

func (l ExamPointList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *ExamPointList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// MasteryHistoryEntry 一次掌握度计算的快照
type MasteryHistoryEntry struct {
	Date  time.Time `json:"date"`
	Level int       `json:"level"`
}

type MasteryHistory []MasteryHistoryEntry

func (h MasteryHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

func (h *MasteryHistory) Scan(value interface{}) error {
	return scanJSON(value, h)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported json column type")
	}
}
