package forms

// Models per the Google Forms API v1, trimmed to what we use.

type Form struct {
	FormID       string   `json:"formId,omitempty"`
	Info         Info     `json:"info,omitempty"`
	Settings     Settings `json:"settings,omitempty"`
	Items        []Item   `json:"items,omitempty"`
	ResponderURI string   `json:"responderUri,omitempty"`
}

type Info struct {
	Title         string `json:"title,omitempty"`
	DocumentTitle string `json:"documentTitle,omitempty"`
	Description   string `json:"description,omitempty"`
}

type Settings struct {
	QuizSettings *QuizSettings `json:"quizSettings,omitempty"`
}

type QuizSettings struct {
	IsQuiz bool `json:"isQuiz"`
}

type Item struct {
	ItemID       string        `json:"itemId,omitempty"`
	Title        string        `json:"title,omitempty"`
	QuestionItem *QuestionItem `json:"questionItem,omitempty"`
}

type QuestionItem struct {
	Question Question `json:"question"`
}

type Question struct {
	QuestionID     string          `json:"questionId,omitempty"`
	Required       bool            `json:"required,omitempty"`
	ChoiceQuestion *ChoiceQuestion `json:"choiceQuestion,omitempty"`
	TextQuestion   *TextQuestion   `json:"textQuestion,omitempty"`
	Grading        *Grading        `json:"grading,omitempty"`
}

type ChoiceQuestion struct {
	Type    string   `json:"type"` // RADIO | CHECKBOX | DROP_DOWN
	Options []Option `json:"options"`
	Shuffle bool     `json:"shuffle,omitempty"`
}

type Option struct {
	Value string `json:"value"`
}

type TextQuestion struct {
	Paragraph bool `json:"paragraph,omitempty"`
}

type Grading struct {
	PointValue     int            `json:"pointValue"`
	CorrectAnswers *CorrectAnswers `json:"correctAnswers,omitempty"`
}

type CorrectAnswers struct {
	Answers []Answer `json:"answers"`
}

type Answer struct {
	Value string `json:"value"`
}

// ----- batchUpdate requests -----

type Request struct {
	CreateItem     *CreateItemRequest     `json:"createItem,omitempty"`
	UpdateItem     *UpdateItemRequest     `json:"updateItem,omitempty"`
	UpdateFormInfo *UpdateFormInfoRequest `json:"updateFormInfo,omitempty"`
	UpdateSettings *UpdateSettingsRequest `json:"updateSettings,omitempty"`
}

type CreateItemRequest struct {
	Item     Item     `json:"item"`
	Location Location `json:"location"`
}

type UpdateItemRequest struct {
	Item       Item     `json:"item"`
	Location   Location `json:"location"`
	UpdateMask string   `json:"updateMask"`
}

type UpdateFormInfoRequest struct {
	Info       Info   `json:"info"`
	UpdateMask string `json:"updateMask"`
}

type UpdateSettingsRequest struct {
	Settings   Settings `json:"settings"`
	UpdateMask string   `json:"updateMask"`
}

type Location struct {
	Index int `json:"index"`
}

// ----- responses -----

type FormResponse struct {
	ResponseID      string                    `json:"responseId,omitempty"`
	RespondentEmail string                    `json:"respondentEmail,omitempty"`
	CreateTime      string                    `json:"createTime,omitempty"`
	TotalScore      *float64                  `json:"totalScore,omitempty"`
	Answers         map[string]ResponseAnswer `json:"answers,omitempty"` // keyed by questionId
}

type ResponseAnswer struct {
	QuestionID  string       `json:"questionId,omitempty"`
	Grade       *Grade       `json:"grade,omitempty"`
	TextAnswers *TextAnswers `json:"textAnswers,omitempty"`
}

type Grade struct {
	Score   float64 `json:"score,omitempty"`
	Correct bool    `json:"correct,omitempty"`
}

type TextAnswers struct {
	Answers []Answer `json:"answers"`
}
