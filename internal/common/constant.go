package common

// DefaultCategory is assigned to notes created without an explicit category.
const DefaultCategory = "Personal"

// MaxTitleLength is the maximum accepted note title length, in characters.
const MaxTitleLength = 100
