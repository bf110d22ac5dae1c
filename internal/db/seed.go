package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SeedSampleData resets the database and populates it with the demo roster
// for Hyderabad, plus a couple of activity postings so the feed is not empty.
//
// Behavior:
//  1. Clears existing data in `users` and `activities` tables.
//  2. Inserts six demo profiles clustered around central Hyderabad.
//  3. Posts two demo activities.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset per dialect).
func SeedSampleData(gdb *gorm.DB) error {
	// --- Fresh start ---
	if err := gdb.Exec("DELETE FROM activities").Error; err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}
	if err := gdb.Exec("DELETE FROM users").Error; err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	// Reset auto-increment sequences so activity ids start back at 1
	switch gdb.Dialector.Name() {
	case "mysql":
		gdb.Exec("ALTER TABLE activities AUTO_INCREMENT = 1")
		gdb.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		gdb.Exec("DELETE FROM sqlite_sequence WHERE name = 'activities'")
		gdb.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	users := []User{
		{Username: "HyderabadBuddy", Lat: 17.385044, Lon: 78.486671, Interests: []string{"Badminton", "Food", "Board Games"}, Bio: "Love exploring new places!"},
		{Username: "SportyPal", Lat: 17.390000, Lon: 78.480000, Interests: []string{"Badminton", "Football", "Cycling"}, Bio: "Always up for sports!"},
		{Username: "FoodieFriend", Lat: 17.380000, Lon: 78.490000, Interests: []string{"Food", "Movies", "Photography"}, Bio: "Foodie and movie buff"},
		{Username: "BookLover", Lat: 17.370000, Lon: 78.480000, Interests: []string{"Board Games", "Reading", "Coffee"}, Bio: "Coffee and books person"},
		{Username: "TechieGeek", Lat: 17.375000, Lon: 78.485000, Interests: []string{"Board Games", "Gaming", "Food"}, Bio: "Tech enthusiast"},
		{Username: "OutdoorExplorer", Lat: 17.395000, Lon: 78.475000, Interests: []string{"Cycling", "Hiking", "Photography"}, Bio: "Adventure seeker"},
	}

	// Insert one by one to keep insertion order == id order across dialects.
	for i := range users {
		if err := gdb.Create(&users[i]).Error; err != nil {
			return fmt.Errorf("failed to seed user %q: %w", users[i].Username, err)
		}
	}
	log.Printf("Seeded %d users.", len(users))

	activities := []Activity{
		{Username: "HyderabadBuddy", ActivityType: "Badminton", Description: "Looking for badminton partner at LB Stadium", TimeSlot: "This evening", Location: "LB Stadium, Banjara Hills"},
		{Username: "FoodieFriend", ActivityType: "Food Exploration", Description: "Biryani crawl around Charminar, join in", TimeSlot: "This weekend", Location: "Charminar"},
	}
	for i := range activities {
		if err := gdb.Create(&activities[i]).Error; err != nil {
			return fmt.Errorf("failed to seed activity: %w", err)
		}
	}
	log.Printf("Seeded %d activities.", len(activities))

	return nil
}
