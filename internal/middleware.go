package internal

import (
	"fmt"
	"net/http"

	"github.com/derWhity/eventqr/internal/ctxhelper"
	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"
)

// RecoverPanics is a middleware that turns a panic inside the endpoint into an internal server error
func RecoverPanics(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				ctxhelper.Logger(ctx).WithField("panic", fmt.Sprint(r)).Error("Recovered from panic")
				response = nil
				err = MakeError(
					http.StatusInternalServerError,
					ErrCodeInternal,
					"The server failed to process the request",
				)
			}
		}()
		return next(ctx, request)
	}
}
