package employee

import "net/http"

// Operation is the closed set of request kinds the service handles.
type Operation int

const (
	OpList Operation = iota
	OpRetrieve
	OpCreate
	OpUpdate
	OpPartialUpdate
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpRetrieve:
		return "retrieve"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpPartialUpdate:
		return "partial_update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// profile binds an operation to its validation rules and response shape.
type profile struct {
	validate bool
	partial  bool
	status   int
	message  string
	shape    func(*Employee) interface{}
}

var profiles = map[Operation]profile{
	OpList:     {status: http.StatusOK},
	OpRetrieve: {status: http.StatusOK},
	OpCreate: {
		validate: true,
		status:   http.StatusCreated,
		message:  MsgCreated,
		shape:    func(e *Employee) interface{} { return e.created() },
	},
	OpUpdate: {
		validate: true,
		status:   http.StatusOK,
		message:  MsgUpdated,
		shape:    func(e *Employee) interface{} { return e.updated() },
	},
	OpPartialUpdate: {
		validate: true,
		partial:  true,
		status:   http.StatusOK,
		message:  MsgUpdated,
		shape:    func(e *Employee) interface{} { return e.updated() },
	},
	OpDelete: {status: http.StatusOK, message: MsgDeleted},
}

// Result is what a mutating operation hands back to the transport layer.
type Result struct {
	Status int
	Body   interface{}
}

func (p profile) result(e *Employee) Result {
	if p.shape == nil {
		return Result{Status: p.status, Body: MessageResponse{Message: p.message}}
	}
	return Result{Status: p.status, Body: DataResponse{Message: p.message, Data: p.shape(e)}}
}
