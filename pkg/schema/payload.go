package schema

// Payload is the machine readable rendering of a scene, shaped for video
// generation APIs.
type Payload struct {
	Meta           Meta           `json:"meta" jsonschema_description:"Generator identification"`
	Prompt         string         `json:"prompt" jsonschema_description:"English narrative prompt without the negative prompt trailer"`
	NegativePrompt string         `json:"negative_prompt" jsonschema_description:"Elements the video must avoid"`
	Parameters     Parameters     `json:"parameters" jsonschema_description:"Fixed rendering defaults"`
	StructuredData StructuredData `json:"structured_data" jsonschema_description:"Scene model mirrored as nested data"`
}

type Meta struct {
	Generator   string `json:"generator"`
	Version     string `json:"version"`
	TargetModel string `json:"target_model"`
}

type Parameters struct {
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
	FrameRate   int    `json:"frame_rate"`
	SampleCount int    `json:"sample_count"`
}

type StructuredData struct {
	Scene      Scene              `json:"scene"`
	Characters []PayloadCharacter `json:"characters"`
	Dialogues  []PayloadDialogue  `json:"dialogues"`
}

type Scene struct {
	Environment string `json:"environment"`
	Lighting    string `json:"lighting"`
	Style       string `json:"style"`
	Camera      Camera `json:"camera"`
}

type Camera struct {
	Angle    string `json:"angle"`
	ShotType string `json:"shot_type"`
	Movement string `json:"movement"`
}

type PayloadCharacter struct {
	ID         string     `json:"id" jsonschema_description:"Synthetic id char_<n>, n being the 1-based position in the cast"`
	Attributes Attributes `json:"attributes"`
	Action     string     `json:"action"`
}

type Attributes struct {
	Race       string `json:"race"`
	Gender     string `json:"gender"`
	Age        string `json:"age"`
	Outfit     string `json:"outfit"`
	Hairstyle  string `json:"hairstyle"`
	EyeContact bool   `json:"eye_contact"`
	Voice      string `json:"voice"`
}

type PayloadDialogue struct {
	Speaker string `json:"speaker" jsonschema_description:"char_<n> of the speaking character, or 'unassigned'"`
	Text    string `json:"text"`
}
