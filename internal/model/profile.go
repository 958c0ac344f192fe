package model

import "time"

// Relationship categories a profile can belong to.
const (
	RelationshipFriend   = "friend"
	RelationshipFamily   = "family"
	RelationshipCoworker = "coworker"
	RelationshipOther    = "other"
)

// Profile is a tracked person. Saves overwrite the whole row.
type Profile struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	Age          int        `json:"age,omitempty"`
	Phone        string     `gorm:"type:text" json:"phone,omitempty"`
	Email        string     `gorm:"type:text" json:"email,omitempty"`
	Relationship string     `gorm:"type:text;index" json:"relationship,omitempty"`
	Job          string     `gorm:"type:text" json:"job,omitempty"`
	Birthday     string     `gorm:"type:text" json:"birthday,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	Tags         TagList    `gorm:"type:text" json:"tags"`
	Parents      StringList `gorm:"type:text" json:"parents"`
	Kids         StringList `gorm:"type:text" json:"kids"`
	Siblings     StringList `gorm:"type:text" json:"siblings"`
	Likes        StringList `gorm:"type:text" json:"likes"`
	Dislikes     StringList `gorm:"type:text" json:"dislikes"`
	Interests    StringList `gorm:"type:text" json:"interests"`
	SocialMedia  SocialList `gorm:"type:text" json:"social_media"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Normalize replaces nil list fields with empty lists.
func (p *Profile) Normalize() {
	if p.Tags == nil {
		p.Tags = TagList{}
	}
	for _, l := range []*StringList{&p.Parents, &p.Kids, &p.Siblings, &p.Likes, &p.Dislikes, &p.Interests} {
		if *l == nil {
			*l = StringList{}
		}
	}
	if p.SocialMedia == nil {
		p.SocialMedia = SocialList{}
	}
}

// ValidRelationship reports whether r is one of the known categories.
func ValidRelationship(r string) bool {
	switch r {
	case RelationshipFriend, RelationshipFamily, RelationshipCoworker, RelationshipOther:
		return true
	}
	return false
}
