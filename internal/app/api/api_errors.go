package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/hknkuvan/spree/internal/domains/orders/application"
	ordersports "github.com/hknkuvan/spree/internal/domains/orders/ports"
	"github.com/hknkuvan/spree/internal/domains/promotions"
	storesapp "github.com/hknkuvan/spree/internal/domains/stores/application"
	storesports "github.com/hknkuvan/spree/internal/domains/stores/ports"
	apierrors "github.com/hknkuvan/spree/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondServiceError translates application errors into RFC 7807 responses.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, storesapp.ErrValidation):
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
	case errors.Is(err, storesapp.ErrLastStore):
		respondProblem(c, apierrors.NewLastStoreProblem(c.Param("storeId")))
	case errors.Is(err, storesports.ErrNotFound):
		respondProblem(c, apierrors.ErrNotFound.WithDetail(err.Error()))
	case errors.Is(err, ordersports.ErrNotFound):
		respondProblem(c, apierrors.ErrNotFound.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrMergeConflict):
		respondProblem(c, apierrors.NewMergeConflictProblem(err.Error()))
	case errors.Is(err, promotions.ErrUnknownCalculator):
		respondProblem(c, apierrors.ErrUnprocessable.WithDetail(err.Error()))
	case errors.Is(err, ordersports.ErrMissingStore):
		respondProblem(c, apierrors.ErrInternal.WithDetail(err.Error()))
	default:
		respondProblem(c, apierrors.ErrInternal.WithDetail(err.Error()))
	}
}

// respondBadRequest covers malformed payloads ahead of the service call.
func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func badIDProblem(param string) apierrors.ProblemDetail {
	return apierrors.ErrBadRequest.
		WithDetail(param + " must be a positive integer").
		WithExtension("parameter", param)
}
