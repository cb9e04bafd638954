package model

// All lists every entity for migrations.
func All() []interface{} {
	return []interface{}{
		&Branch{},
		&Department{},
		&Team{},
		&Shift{},
		&Personnel{},
		&LeaveRequest{},
		&Notification{},
		&NotificationReceipt{},
		&SmsLog{},
		&Preference{},
		&QRToken{},
		&QRScreen{},
		&AttendanceRecord{},
	}
}
