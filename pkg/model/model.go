package model

// Customer is the JSON representation of a customer as exchanged with the
// clientes service. Fields are pointers so that clients can send partial
// updates.
type Customer struct {
	Id       int64   `json:"id,omitempty"`
	Nome     *string `json:"nome,omitempty"`
	Email    *string `json:"email,omitempty"`
	Telefone *string `json:"telefone,omitempty"`
}
