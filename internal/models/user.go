package models

// User is an account in the user directory.
type User struct {
	BaseModel
	Email            string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName         string `gorm:"type:varchar(100);not null" json:"fullName"`
	PasswordHash     string `gorm:"type:varchar(255);not null" json:"-"`
	Bio              string `gorm:"type:text" json:"bio"`
	ProfilePic       string `gorm:"type:varchar(512)" json:"profilePic"`
	ProfilePicKey    string `gorm:"type:varchar(255)" json:"-"` // object-storage key of ProfilePic
	NativeLanguage   string `gorm:"type:varchar(50)" json:"nativeLanguage"`
	LearningLanguage string `gorm:"type:varchar(50)" json:"learningLanguage"`
	Location         string `gorm:"type:varchar(100)" json:"location"`
	IsOnboarded      bool   `gorm:"not null;default:false;index" json:"isOnboarded"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}

// UserProfile is the public projection of a User. It never carries the email
// or credentials.
type UserProfile struct {
	ID               uint   `json:"id"`
	FullName         string `json:"fullName"`
	Bio              string `json:"bio,omitempty"`
	ProfilePic       string `json:"profilePic"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location,omitempty"`
	IsOnboarded      bool   `json:"isOnboarded"`
}

// UserBasicInfo holds the minimal profile shown next to a friend request.
type UserBasicInfo struct {
	ID               uint   `json:"id"`
	FullName         string `json:"fullName"`
	ProfilePic       string `json:"profilePic"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
}

// Profile projects the user for display.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:               u.ID,
		FullName:         u.FullName,
		Bio:              u.Bio,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
		Location:         u.Location,
		IsOnboarded:      u.IsOnboarded,
	}
}

// BasicInfo projects the user down to UserBasicInfo.
func (u *User) BasicInfo() UserBasicInfo {
	return UserBasicInfo{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
	}
}

// ProfileColumns are the users columns needed to build a UserProfile.
var ProfileColumns = []string{"id", "full_name", "bio", "profile_pic", "native_language", "learning_language", "location", "is_onboarded"}
