package handler

import "github.com/gin-gonic/gin"

// RegisterStudentRoutes mounts the student registry and enrollment endpoints on group.
func RegisterStudentRoutes(group *gin.RouterGroup, students *StudentHandler, enrollments *EnrollmentHandler) {
	student := group.Group("/student")
	student.GET("", students.List)
	student.POST("", students.Create)
	student.GET("/:studentId", students.Get)
	student.PUT("/:studentId", students.Update)
	student.DELETE("/:studentId", students.Delete)

	courses := student.Group("/courses")
	courses.GET("/:studentId", enrollments.List)
	courses.GET("/:studentId/export", enrollments.Export)
	courses.POST("/:studentId/:courseCode", enrollments.Enroll)
	courses.PUT("/:studentId/:courseCode", enrollments.Refresh)
	courses.DELETE("/:studentId/:courseCode", enrollments.Unenroll)
}

// RegisterCourseRoutes mounts the course registry endpoints on group.
func RegisterCourseRoutes(group *gin.RouterGroup, courses *CourseHandler) {
	course := group.Group("/course")
	course.GET("", courses.List)
	course.POST("", courses.Create)
	course.GET("/:code", courses.Get)
	course.PUT("/:code", courses.Update)
	course.DELETE("/:code", courses.Delete)
}

// RegisterOpsRoutes mounts the unauthenticated health and metrics endpoints.
func RegisterOpsRoutes(r gin.IRoutes, health *HealthHandler, metrics *MetricsHandler) {
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", metrics.Prometheus)
	r.GET("/metrics/summary", metrics.Summary)
}
