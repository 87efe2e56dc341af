package models

// NewAccount is the single account-creation payload sent upstream once the
// registration wizard completes.
type NewAccount struct {
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Location       string     `json:"location,omitempty"`
	Profession     string     `json:"profession,omitempty"`
	Batch          string     `json:"batch,omitempty"`
	AlumniType     AlumniType `json:"alumniType"`
	IsGraduated    bool       `json:"isGraduated"`
	GraduationYear *int       `json:"graduationYear,omitempty"`
	LeftAt         *int       `json:"leftAt,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	ProfilePhoto   string     `json:"profilePhoto,omitempty"`
	Password       string     `json:"password"`
}

// NewGalleryItem is the payload for publishing uploaded images.
type NewGalleryItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Year        int      `json:"year"`
	Images      []string `json:"images"`
}
