package model

// All lists every table in migration order.
func All() []any {
	return []any{
		&Group{},
		&EmailUser{},
		&ValueType{},
		&Content{},
		&YouTubeContent{},
		&Questionaire{},
		&Request{},
		&RelationParticipant{},
		&Curve{},
	}
}
