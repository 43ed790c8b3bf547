package db

import "gorm.io/gorm"

type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func (p Page[T]) Pages() int {
	if p.PerPage <= 0 {
		return 1
	}
	pages := int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		return 1
	}
	return pages
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }

// ClampPaging keeps page >= 1 and perPage within 1..maxPerPage.
func ClampPaging(page, perPage, maxPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	return page, perPage
}

// Paginate counts query and loads one ordered page of T.
func Paginate[T any](query *gorm.DB, order string, page, perPage int) (Page[T], error) {
	result := Page[T]{Page: page, PerPage: perPage}
	if err := query.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return result, err
	}
	err := query.Session(&gorm.Session{}).
		Order(order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&result.Items).Error
	return result, err
}
