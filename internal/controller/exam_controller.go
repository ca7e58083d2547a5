package controller

import (
	"exam_site_backend/internal/service"
	"exam_site_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Catalog *service.ExamCatalogService
	Sampler *service.QuestionSamplerService
}

func NewExamController(catalog *service.ExamCatalogService, sampler *service.QuestionSamplerService) *ExamController {
	return &ExamController{Catalog: catalog, Sampler: sampler}
}

// ListExams godoc
// @Summary 试卷列表
// @Description 所有试卷及其题目数量
// @Tags 考试
// @Produce json
// @Success 200 {object} util.Response{data=[]repository.ExamListRow}
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.Catalog.List(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// Setup godoc
// @Summary 考试准备信息
// @Description 返回题目总数和默认题量，用于选择本次考试的题量
// @Tags 考试
// @Produce json
// @Param examId path int true "试卷ID"
// @Success 200 {object} util.Response{data=service.ExamSetup}
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /exams/{examId} [get]
func (c *ExamController) Setup(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("examId"))
	if !ok {
		util.RespondError(ctx, util.ErrExamNotFound)
		return
	}
	setup, err := c.Catalog.Setup(ctx.Request.Context(), examID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, setup)
}

// Take godoc
// @Summary 抽题
// @Description 按题量随机抽取题目及选项，不包含正确答案
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param examId path int true "试卷ID"
// @Param quantity query string false "题量：正整数或 all"
// @Success 200 {object} util.Response{data=service.SampledExam}
// @Failure 400 {object} util.Response "题量无效"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /exams/{examId}/take [get]
func (c *ExamController) Take(ctx *gin.Context) {
	examID, ok := util.ParseID(ctx.Param("examId"))
	if !ok {
		util.RespondError(ctx, util.ErrExamNotFound)
		return
	}

	quantity := service.AllQuestions
	if c.Catalog.DefaultQuantity != nil {
		quantity = c.Catalog.DefaultQuantity()
	}
	if raw, exists := ctx.GetQuery("quantity"); exists {
		q, err := service.ParseQuantity(raw)
		if err != nil {
			util.RespondError(ctx, err)
			return
		}
		quantity = q
	}

	exam, err := c.Sampler.SampleForForm(ctx.Request.Context(), examID, quantity)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}
