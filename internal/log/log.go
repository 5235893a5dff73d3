package log

const (
	// FldFile is the name of the log field for storing file name information
	FldFile = "file"
	// FldPath is the name of the log field for storing path name information
	FldPath = "path"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldURL is the URL a request has been sent to
	FldURL = "url"
	// FldMethod is the HTTP method or service method of a call
	FldMethod = "method"
	// FldStatus is the HTTP status code of a response
	FldStatus = "status"
	// FldPlatform is the runtime platform the client resolved its endpoint for
	FldPlatform = "platform"
	// FldRequestID is the ID that correlates client and server log entries of the same request
	FldRequestID = "requestId"
	// FldCount is the number of entities affected
	FldCount = "count"
	// FldDuration is the time an operation took
	FldDuration = "took"
	// FldField is the name of an input field
	FldField = "field"
	// FldGeneration is the submission generation of a form
	FldGeneration = "generation"
)
