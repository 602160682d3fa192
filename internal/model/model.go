package model

// Customer is the data structure for a customer ("cliente") of the business.
// All fields are required; the Id is assigned by the store on creation.
type Customer struct {
	Id       int64  `json:"id"       db:"id"`
	Nome     string `json:"nome"     db:"nome"     binding:"required"`
	Email    string `json:"email"    db:"email"    binding:"required"`
	Telefone string `json:"telefone" db:"telefone" binding:"required"`
}

// CustomerUpdate holds the values submitted for changing a customer. A nil
// field was not submitted and keeps its stored value; a submitted value must
// not be empty.
type CustomerUpdate struct {
	Nome     *string `json:"nome,omitempty"     binding:"omitnil,min=1"`
	Email    *string `json:"email,omitempty"    binding:"omitnil,min=1"`
	Telefone *string `json:"telefone,omitempty" binding:"omitnil,min=1"`
}

// Empty returns true if no value at all was submitted.
func (u CustomerUpdate) Empty() bool {
	return u.Nome == nil && u.Email == nil && u.Telefone == nil
}

// Apply copies the submitted values onto the customer.
func (u CustomerUpdate) Apply(c *Customer) {
	if u.Nome != nil {
		c.Nome = *u.Nome
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Telefone != nil {
		c.Telefone = *u.Telefone
	}
}
