package client

// Cache keys name a logical resource plus optional id. Every mutation
// invalidates the exact keys its collection touches, nothing more.

func keySeriesList() string { return "series" }

func keySeries(id string) string { return "series:" + id }

func keySeriesVideos(id string) string { return "series:" + id + ":videos" }

func keyVideoList() string { return "videos" }

func keyVideo(id string) string { return "videos:" + id }

func keyVideoFeedback(id string) string { return "videos:" + id + ":feedback" }
