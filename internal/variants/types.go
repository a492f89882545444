package variants

// MaxSlots is the number of text box slots a template can carry.
const MaxSlots = 7

// Goal is one strategic direction for a meme, produced from the batch
// context.
type Goal struct {
	Goal    string `json:"goal"`
	Emotion string `json:"emotion"`
	Message string `json:"message"`
	Tone    int    `json:"tone"`
	Impact  string `json:"impact"`
}

// Query is the text used to search the template catalog for this goal.
func (g Goal) Query() string {
	return g.Goal + " " + g.Impact
}

// Variant is one generated caption set. Captions is indexed by slot; nil
// entries mean the model produced nothing for that box.
type Variant struct {
	BoxCount int
	Captions [MaxSlots]*string
}

// Example is one historical meme used as engagement guidance.
type Example struct {
	Captions []string
	Score    int
}

// Examples groups engagement guidance by polarity.
type Examples struct {
	MostLiked    []Example
	MostDisliked []Example
}
