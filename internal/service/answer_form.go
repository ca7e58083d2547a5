package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"exam_site_backend/internal/util"
)

// csrfFieldMarker 含有该片段的表单字段属于 CSRF 防护，不是答案
const csrfFieldMarker = "csrf"

// ParseFormAnswers 把表单提交（题目 ID -> 选项字母列表）转换为 Submission。
// 空字符串值用于标记“已展示但未作答”的题目
func ParseFormAnswers(raw map[string][]string) (Submission, error) {
	sub := make(Submission, len(raw))
	for key, values := range raw {
		if strings.Contains(strings.ToLower(key), csrfFieldMarker) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: question key %q", util.ErrMalformedAnswer, key)
		}

		letters := sub[uint(id)]
		if letters == nil {
			letters = []string{}
		}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if utf8.RuneCountInString(v) != 1 {
				return nil, fmt.Errorf("%w: choice %q for question %d", util.ErrMalformedAnswer, v, id)
			}
			if !slices.Contains(letters, v) {
				letters = append(letters, v)
			}
		}
		sub[uint(id)] = letters
	}
	if len(sub) == 0 {
		return nil, util.ErrEmptySubmission
	}
	return sub, nil
}
