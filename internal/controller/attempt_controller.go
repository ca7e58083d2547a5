package controller

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"exam_site_backend/internal/service"
	"exam_site_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 50

type AttemptController struct {
	Attempts *service.AttemptService
}

func NewAttemptController(attempts *service.AttemptService) *AttemptController {
	return &AttemptController{Attempts: attempts}
}

// SaveAnswersRequest JSON 形式的答案：题目 ID -> 选中的选项字母
// swagger:model SaveAnswersRequest
type SaveAnswersRequest struct {
	Answers map[string][]string `json:"answers" binding:"required"`
}

// SaveResult 提交成功后返回的成绩概要
type SaveResult struct {
	UniqueID   string `json:"uniqueId"`
	ExamID     uint   `json:"examId"`
	Score      int    `json:"score"`
	ResultsURL string `json:"resultsUrl"`
}

// Save godoc
// @Summary 提交答案
// @Description 接受表单（键为题目 ID，可重复）或 JSON，评分并保存本次考试记录
// @Tags 考试
// @Accept  json,x-www-form-urlencoded
// @Produce json
// @Security ApiKeyAuth
// @Param examId path int true "试卷ID"
// @Param body body SaveAnswersRequest false "JSON 形式的答案"
// @Success 201 {object} util.Response{data=SaveResult}
// @Failure 400 {object} util.Response "未作答或答案无效"
// @Failure 404 {object} util.Response "试卷不存在"
// @Failure 409 {object} util.Response "上一次提交尚未完成"
// @Failure 500 {object} util.Response
// @Router /exams/{examId}/save [post]
func (c *AttemptController) Save(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := util.ParseID(ctx.Param("examId"))
	if !ok {
		util.RespondError(ctx, util.ErrExamNotFound)
		return
	}

	raw, err := readAnswers(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Attempts.SubmitForm(ctx.Request.Context(), examID, claims.UserID, raw)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, SaveResult{
		UniqueID:   attempt.UniqueID,
		ExamID:     attempt.ExamID,
		Score:      attempt.Score,
		ResultsURL: fmt.Sprintf("/api/exams/%d/results/%s", attempt.ExamID, url.PathEscape(attempt.UniqueID)),
	})
}

func readAnswers(ctx *gin.Context) (map[string][]string, error) {
	if strings.HasPrefix(ctx.ContentType(), gin.MIMEJSON) {
		var req SaveAnswersRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return req.Answers, nil
	}
	if ctx.ContentType() == gin.MIMEMultipartPOSTForm {
		form, err := ctx.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}
	if err := ctx.Request.ParseForm(); err != nil {
		return nil, err
	}
	return ctx.Request.PostForm, nil
}

// Results godoc
// @Summary 考试结果
// @Description 按成绩编号重建一次考试的题目、选项、选择情况和得分
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param examId path int true "试卷ID"
// @Param uniqueId path string true "成绩编号，如 alice_2024-01-02_03-04-05"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response "记录不存在"
// @Router /exams/{examId}/results/{uniqueId} [get]
func (c *AttemptController) Results(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("examId"))
	if !ok {
		util.RespondError(ctx, util.ErrAttemptNotFound)
		return
	}

	view, err := c.Attempts.Read(ctx.Request.Context(), examID, ctx.Param("uniqueId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// History godoc
// @Summary 考试记录
// @Description 当前用户已完成的考试，最新的在前
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "最多返回条数，默认 50"
// @Success 200 {object} util.Response{data=[]repository.AttemptHistoryRow}
// @Router /profile/attempts [get]
func (c *AttemptController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := defaultHistoryLimit
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			util.BadRequest(ctx, "limit must be a positive number")
			return
		}
		limit = n
	}

	rows, err := c.Attempts.History(ctx.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
