package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"exam_site_backend/internal/service"
	"exam_site_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 试题文件大小上限
const maxExamFileSize = 5 << 20

type AdminExamController struct {
	Importer *service.ExamImportService
}

func NewAdminExamController(importer *service.ExamImportService) *AdminExamController {
	return &AdminExamController{Importer: importer}
}

// Upload godoc
// @Summary 上传试卷
// @Description 上传 JSON 或 YAML 试题文件，全部题目校验通过后一次性保存
// @Tags 管理员
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "试卷标题"
// @Param source formData string false "来源"
// @Param file formData file true "试题文件 (.json/.yaml/.yml)"
// @Success 201 {object} util.Response{data=model.Exam}
// @Failure 400 {object} util.Response{data=[]string} "文件格式错误，data 为全部问题"
// @Failure 403 {object} util.Response
// @Router /admin/exams/upload [post]
func (c *AdminExamController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if fileHeader.Size > maxExamFileSize {
		util.BadRequest(ctx, fmt.Sprintf("file is larger than %d bytes", maxExamFileSize))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(util.AllowedExamFileExtensions, ext) {
		util.BadRequest(ctx, "unsupported file type "+ext)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxExamFileSize))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	exam, err := c.Importer.Import(ctx.Request.Context(), service.ImportRequest{
		Title:          ctx.PostForm("title"),
		Source:         ctx.PostForm("source"),
		Uploader:       claims.Username,
		IsUserUploaded: true,
		Filename:       fileHeader.Filename,
		Data:           data,
	})
	if err != nil {
		var fileErr *service.ExamFileError
		if errors.As(err, &fileErr) {
			ctx.JSON(http.StatusBadRequest, util.Response{
				Code:    http.StatusBadRequest,
				Message: util.ErrInvalidExamFile.Error(),
				Data:    fileErr.Problems,
			})
			return
		}
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, exam)
}
