package user

import "time"

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	// Currency is the ISO 4217 code used for display, e.g. "EUR".
	Currency     string
	WeekFirstDay time.Weekday
}
