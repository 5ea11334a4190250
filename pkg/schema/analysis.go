package schema

// ImageAttributes is what the image analyser returns for a reference picture.
// Every value is best effort and may come back empty.
type ImageAttributes struct {
	Race        string `json:"race" jsonschema_description:"Exactly one ethnicity from the provided list, or the closest match"`
	Gender      string `json:"gender" jsonschema_description:"Exactly one gender from the provided list"`
	Age         string `json:"age" jsonschema_description:"Estimated age as a numeric string (e.g. '32')"`
	Outfit      string `json:"outfit" jsonschema_description:"Detailed description of the clothing worn"`
	Hairstyle   string `json:"hairstyle" jsonschema_description:"Detailed description of the hairstyle"`
	Description string `json:"description" jsonschema_description:"One sentence about the general appearance, expression or action of the person"`
}
