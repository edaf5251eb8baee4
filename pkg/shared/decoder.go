package shared

import "github.com/go-playground/form"

// Decoder is the shared URL/form value decoder used by composables.UseQuery
// and composables.UseForm. Struct fields bind by name unless a `form` tag
// says otherwise.
var Decoder = form.NewDecoder()
