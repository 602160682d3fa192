package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/clientes-service/internal/logger"
	"gitlab.com/dirk.krummacker/clientes-service/internal/model"
	"gitlab.com/dirk.krummacker/clientes-service/internal/store"
)

// Fixed plain-text bodies of failed requests.
const (
	MsgInvalidData      = "Invalid data. Name, email and phone are required."
	MsgInvalidUpdate    = "Invalid data. Name, email and phone must not be empty."
	MsgEmailRegistered  = "Email already registered."
	MsgNotFound         = "Customer not found."
	MsgCreateFailed     = "Error creating customer."
	MsgListFailed       = "Error listing customers."
	MsgProcessingFailed = "Error processing request."
)

// Repository is the persistence the service needs. It reports a missing customer with
// store.ErrNotFound and a taken email with store.ErrDuplicateEmail.
type Repository interface {
	List(ctx context.Context) ([]model.Customer, error)
	Get(ctx context.Context, id int64) (model.Customer, error)
	Create(ctx context.Context, customer model.Customer) (model.Customer, error)
	Update(ctx context.Context, id int64, update model.CustomerUpdate) (model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Service translates HTTP requests on /clientes into repository calls. It keeps no state between
// requests.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// New creates the service on top of the given repository.
func New(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. If requestLogging
// is false then individual requests are not logged.
func (s *Service) SetupHttpRouter(requestLogging bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestID())
	if requestLogging {
		router.Use(logger.Middleware(s.log))
	} else {
		s.log.Info().Msg("Turning off HTTP request logging.")
	}
	router.GET("/clientes", s.findCustomers)
	router.POST("/clientes", s.createCustomer)
	router.GET("/clientes/:id", s.findCustomerByID)
	router.PUT("/clientes/:id", s.updateCustomerByID)
	router.DELETE("/clientes/:id", s.deleteCustomerByID)
	return router
}

// findCustomers responds with the list of all customers as JSON, in the order they were created.
//
// Example REST API call:
//
//	> curl http://localhost:3000/clientes
func (s *Service) findCustomers(c *gin.Context) {
	customers, err := s.repo.List(c.Request.Context())
	if err != nil {
		s.failed(c, err, http.StatusInternalServerError, MsgListFailed)
		return
	}
	c.IndentedJSON(http.StatusOK, customers)
}

// createCustomer inserts the customer specified in the request's JSON into the database. It
// responds with the full customer data including the newly assigned id. Name, email and phone
// must all be present and non-empty.
//
// Example REST API call:
//
//	> curl http://localhost:3000/clientes --request "POST" --include --header "Content-Type: application/json" --data '{"nome": "João Silva", "email": "joao.silva@example.com", "telefone": "11987654321"}'
func (s *Service) createCustomer(c *gin.Context) {
	var newCustomer model.Customer
	if err := c.ShouldBindJSON(&newCustomer); err != nil {
		c.String(http.StatusBadRequest, MsgInvalidData)
		return
	}
	newCustomer.Id = 0

	created, err := s.repo.Create(c.Request.Context(), newCustomer)
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		c.String(http.StatusConflict, MsgEmailRegistered)
	case err != nil:
		s.failed(c, err, http.StatusInternalServerError, MsgCreateFailed)
	default:
		c.IndentedJSON(http.StatusCreated, created)
	}
}

// findCustomerByID locates the customer whose ID value matches the id parameter of the request
// URL, then returns that customer as a response.
//
// Example REST API call:
//
//	> curl http://localhost:3000/clientes/56
func (s *Service) findCustomerByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := s.repo.Get(c.Request.Context(), id)
	if err != nil {
		s.storeFailed(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, customer)
}

// updateCustomerByID updates the customer whose ID value matches the id parameter of the request
// URL with the values specified in the JSON (and only those), and finally responds with the new
// version of the customer. An empty body changes nothing. A customer that does not exist is
// answered with NOT FOUND even if the body is invalid.
//
// Example REST API calls:
//
//	> curl http://localhost:3000/clientes/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"telefone": "81970"}'
//	> curl http://localhost:3000/clientes/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"nome": "Rafaela Nova", "telefone": "222"}'
func (s *Service) updateCustomerByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var submitted model.CustomerUpdate
	if err := c.ShouldBindJSON(&submitted); err != nil && !errors.Is(err, io.EOF) {
		// An unknown customer takes precedence over a bad body.
		if _, err := s.repo.Get(c.Request.Context(), id); err != nil {
			s.storeFailed(c, err)
			return
		}
		c.String(http.StatusBadRequest, MsgInvalidUpdate)
		return
	}

	updated, err := s.repo.Update(c.Request.Context(), id, submitted)
	if err != nil {
		s.storeFailed(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// deleteCustomerByID deletes the customer whose ID value matches the id parameter of the request
// URL from the database. A successful deletion is answered with an empty body.
//
// Example REST API call:
//
//	> curl http://localhost:3000/clientes/56 --request "DELETE"
func (s *Service) deleteCustomerByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.repo.Delete(c.Request.Context(), id); err != nil {
		s.storeFailed(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID reads the id parameter of the request URL. An id that is not a number cannot belong to
// any customer, so it is answered like an unknown one without asking the database.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, MsgNotFound)
		return 0, false
	}
	return id, true
}

// storeFailed maps a repository error of the get, update and delete endpoints to a response.
func (s *Service) storeFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.String(http.StatusNotFound, MsgNotFound)
	case errors.Is(err, store.ErrDuplicateEmail):
		c.String(http.StatusConflict, MsgEmailRegistered)
	default:
		s.failed(c, err, http.StatusInternalServerError, MsgProcessingFailed)
	}
}

// failed logs an unexpected error and answers with a generic message that reveals no internals.
func (s *Service) failed(c *gin.Context, err error, status int, message string) {
	s.log.Error().
		Err(err).
		Str("request_id", logger.GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.String(status, message)
}
