package models

import (
	"time"

	"gorm.io/gorm"
)

// SkinColor follows the IBGE census enumeration.
type SkinColor string

const (
	SkinColorBranca   SkinColor = "branca"
	SkinColorPreta    SkinColor = "preta"
	SkinColorParda    SkinColor = "parda"
	SkinColorAmarela  SkinColor = "amarela"
	SkinColorIndigena SkinColor = "indigena"
)

// Subject is a person assisted by the social-care program.
type Subject struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Name             string         `gorm:"not null" json:"name"`
	RelativeName     string         `gorm:"not null" json:"relative_name"`
	RelativeRelation string         `gorm:"not null" json:"relative_relation"`
	BirthDate        time.Time      `gorm:"type:date" json:"birth_date"`
	ContactPhone     string         `json:"contact_phone"`
	CPF              string         `gorm:"column:cpf" json:"cpf"`
	RG               string         `gorm:"column:rg" json:"rg"`
	SkinColor        SkinColor      `gorm:"type:varchar(20)" json:"skin_color"`
}
