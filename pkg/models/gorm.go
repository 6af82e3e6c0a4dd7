package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&DocumentRecord{}, // Must be first - documents reference it
		&Document{},
		&Redirect{},
		&PathReservation{},
	}
}
