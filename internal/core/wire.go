package core

// Wire event names.
const (
	EventConnection   = "connection"
	EventSetName      = "setName"
	EventNameSet      = "nameSet"
	EventJoinPerson   = "joinPerson"
	EventOutPerson    = "outPerson"
	EventClientsCount = "clientsCount"
	EventMessage      = "message"
	EventStranger     = "stranger"
	EventResult       = "result"
)

// ResCodeOK is the only status code the relay ever sends.
const ResCodeOK = "0"

// Envelope is the JSON frame exchanged in both directions.
type Envelope[T any] struct {
	Event string `json:"event"`
	Data  T      `json:"data"`
}

type ConnectionPayload struct {
	ClientID ConnID `json:"clientId"`
}

type SetNamePayload struct {
	Name string `json:"name"`
}

type NameSetPayload struct {
	Success bool `json:"success"`
}

type ClientsCountPayload struct {
	Count int `json:"count"`
}

type MessagePayload struct {
	ID      ConnID `json:"id"`
	Message string `json:"message"`
}

type StrangerPayload struct {
	ResCode string `json:"res_code"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

type ResultPayload struct {
	ResCode string `json:"res_code"`
	Message string `json:"message"`
}
