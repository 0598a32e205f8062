package db_models

// Account is a subscriber. Credentials live with the identity provider that
// issues the JWTs; only contact details are kept here.
type Account struct {
	BaseModel
	FullName    string
	Email       string `gorm:"unique"`
	PhoneNumber string
	IDNumber    string
	Role        string `gorm:"default:user"`

	Policies []Policy `gorm:"foreignKey:AccountID"`
}
