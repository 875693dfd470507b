// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables, columns and unique indexes created by the
// SQL migrations, so queries never drift from data/migrations.
package schema

import "strings"

// UserAccountTable describes the 'users.account' table.
type UserAccountTable struct {
	Table           string
	ID              string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Username        string
	ProfilePicture  string
	Bio             string
	AnswerUsage     string
	AnswerDescribes string
	AnswerHeardFrom string
	CreatedAt       string
	UpdatedAt       string

	// Unique indexes
	EmailKey    string
	UsernameKey string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table:           "users.account",
	ID:              "id",
	Email:           "email",
	Password:        "passwordhash",
	FirstName:       "firstname",
	LastName:        "lastname",
	Username:        "username",
	ProfilePicture:  "profilepicture",
	Bio:             "bio",
	AnswerUsage:     "answerusage",
	AnswerDescribes: "answerdescribes",
	AnswerHeardFrom: "answerheardfrom",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	EmailKey:        "account_email_key",
	UsernameKey:     "account_username_key",
}

// Columns returns every column in insert and scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.FirstName, t.LastName, t.Username,
		t.ProfilePicture, t.Bio, t.AnswerUsage, t.AnswerDescribes, t.AnswerHeardFrom,
		t.CreatedAt, t.UpdatedAt,
	}
}

// ColumnList joins [UserAccountTable.Columns] for a SELECT or INSERT clause.
func (t UserAccountTable) ColumnList() string {
	return strings.Join(t.Columns(), ", ")
}
