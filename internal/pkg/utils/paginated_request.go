package utils

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/reject"
)

const (
	pageSizeMissing  string = "error.request.page-size-missing"
	pageTokenMissing string = "error.request.page-token-missing"

	MaxPageSize int = 100
)

type PageRequest struct {
	Size   int
	Token  int
	Offset int
}

func NewPageRequest(c *gin.Context) (PageRequest, *reject.ProblemWithTrace) {
	pageSize, pageSizeError := strconv.Atoi(c.Query("page_size"))

	if pageSizeError == nil && pageSize < 1 {
		pageSizeError = fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if pageSizeError != nil {
		return PageRequest{}, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Page size not specified").
				WithStatus(http.StatusBadRequest).
				WithCode(pageSizeMissing).
				WithParam("page_size", c.Query("page_size")).
				Build(),
			Cause: pageSizeError,
		}
	}

	pageToken, pageTokenError := strconv.Atoi(c.DefaultQuery("page_token", "0"))

	if pageTokenError == nil && pageToken < 0 {
		pageTokenError = fmt.Errorf("page token must not be negative, got %d", pageToken)
	}
	if pageTokenError != nil {
		return PageRequest{}, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Page token not specified").
				WithStatus(http.StatusBadRequest).
				WithCode(pageTokenMissing).
				WithParam("page_token", c.Query("page_token")).
				Build(),
			Cause: pageTokenError,
		}
	}

	pageSize = min(pageSize, MaxPageSize)

	return PageRequest{
		Size:   pageSize,
		Token:  pageToken,
		Offset: pageSize * pageToken,
	}, nil
}

// NextToken is the token of the page after this one, or 0 when this is the last page.
func (pr PageRequest) NextToken(total int64) int64 {
	if int64(pr.Offset+pr.Size) >= total {
		return 0
	}
	return int64(pr.Token + 1)
}
