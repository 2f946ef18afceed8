package helper

import (
	"net/http"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/logger"

	"github.com/samber/lo"
)

// ParseResponse fills in the status code and message a service left out,
// deriving both from the error kind when there is one.
func ParseResponse(r *types.Response) *types.Response {
	if r.Code == 0 {
		r.Code = lo.Ternary(r.Error != nil, errs.HTTPStatus(r.Error), http.StatusOK)
	}
	if r.Message == "" {
		r.Message = lo.TernaryF(r.Error != nil,
			func() string { return r.Error.Error() },
			func() string { return http.StatusText(r.Code) })
	}
	if r.Code >= http.StatusInternalServerError {
		logger.Error.Printf("%d %s: %v", r.Code, r.Message, r.Error)
	}
	return r
}

// ToAPIResponse shapes r into the JSON envelope written to clients.
func ToAPIResponse(r *types.Response) types.ResponseAPI {
	res := types.ResponseAPI{
		Status:  r.Code,
		Message: r.Message,
		Data:    r.Data,
	}
	if r.Error != nil {
		res.Error = r.Error.Error()
	}
	return res
}
