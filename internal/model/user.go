package model

// User holds the contact details used for confirmation emails.  The id is
// the opaque subject issued by the identity provider.
type User struct {
    ID    string
    Name  string
    Email string
}
