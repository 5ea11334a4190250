package scene

import (
	"veoprompt/pkg/catalog"
)

// CharacterUpdate carries the fields to change; nil fields are left alone.
type CharacterUpdate struct {
	Ethnicity       *string `json:"ethnicity,omitempty"`
	CustomEthnicity *string `json:"custom_ethnicity,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	Age             *string `json:"age,omitempty"`
	Outfit          *string `json:"outfit,omitempty"`
	Hairstyle       *string `json:"hairstyle,omitempty"`
	Voice           *string `json:"voice,omitempty"`
	Description     *string `json:"description,omitempty"`
	LookAtCamera    *bool   `json:"look_at_camera,omitempty"`
}

func (u CharacterUpdate) apply(c *Character) {
	if u.Ethnicity != nil {
		c.Ethnicity = *u.Ethnicity
	}
	if u.CustomEthnicity != nil {
		c.CustomEthnicity = *u.CustomEthnicity
	}
	if u.Gender != nil {
		c.Gender = *u.Gender
	}
	if u.Age != nil {
		c.Age = *u.Age
	}
	if u.Outfit != nil {
		c.Outfit = *u.Outfit
	}
	if u.Hairstyle != nil {
		c.Hairstyle = *u.Hairstyle
	}
	if u.Voice != nil {
		c.Voice = *u.Voice
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.LookAtCamera != nil {
		c.LookAtCamera = *u.LookAtCamera
	}
	c.normalize()
}

// normalize snaps the ethnicity and gender onto their catalog tags and
// resolves the locale from the result.
func (c *Character) normalize() {
	if tag, ok := catalog.MatchEthnicity(c.Ethnicity); ok {
		c.Ethnicity = tag
	}
	c.Gender = catalog.NormalizeGender(c.Gender)
	c.resolveLocale()
}

type DialogueUpdate struct {
	CharacterID *string `json:"character_id,omitempty"`
	Text        *string `json:"text,omitempty"`
}

type EnvironmentUpdate struct {
	Description    *string `json:"description,omitempty"`
	Style          *string `json:"style,omitempty"`
	Lighting       *string `json:"lighting,omitempty"`
	CameraAngle    *string `json:"camera_angle,omitempty"`
	ShotType       *string `json:"shot_type,omitempty"`
	CameraMovement *string `json:"camera_movement,omitempty"`
}

func (u EnvironmentUpdate) apply(e *Environment) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Description, u.Description)
	set(&e.Style, u.Style)
	set(&e.Lighting, u.Lighting)
	set(&e.CameraAngle, u.CameraAngle)
	set(&e.ShotType, u.ShotType)
	set(&e.CameraMovement, u.CameraMovement)
	e.normalize()
}

// normalize snaps the camera and lighting fields onto their catalog values.
func (e *Environment) normalize() {
	snap := func(dst *string, options []catalog.Option) {
		if o, ok := catalog.Find(options, *dst); ok {
			*dst = o.Value
		}
	}
	snap(&e.Lighting, catalog.Lighting)
	snap(&e.CameraAngle, catalog.CameraAngles)
	snap(&e.ShotType, catalog.ShotTypes)
	snap(&e.CameraMovement, catalog.CameraMovements)
}

// Ptr is a helper for building updates.
func Ptr[T any](v T) *T { return &v }
