package model

type QuestionType string

const (
	QuestionSimilar  QuestionType = "similar"
	QuestionOriginal QuestionType = "original"
)

// Question 系统生成的练习题（错题的变式题）
type Question struct {
	UUIDBase
	Content         string       `gorm:"type:text;not null" json:"content"`
	Answer          string       `gorm:"type:text;not null" json:"answer"`
	Explanation     string       `gorm:"type:text" json:"explanation"`
	KnowledgePoints StringArray  `gorm:"type:json" json:"knowledgePoints"`
	ExamPoints      StringArray  `gorm:"type:json" json:"examPoints"`
	Difficulty      int          `gorm:"default:3" json:"difficulty"`
	Type            QuestionType `gorm:"size:20;default:'similar'" json:"type"`
}

func (Question) TableName() string {
	return "questions"
}
