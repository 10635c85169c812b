package db

import (
	"gorm.io/gorm"
)

// GetUserByUsername retrieves a user by username
func GetUserByUsername(conn *gorm.DB, username string) (*User, error) {
	var user User
	if err := conn.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a new user record
func CreateUser(conn *gorm.DB, username, hashedPassword string) (*User, error) {
	user := User{
		Username: username,
		Password: hashedPassword,
	}
	if err := conn.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
