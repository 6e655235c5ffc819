package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
	"github.com/streamcart/streamcart_backend/middleware"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/services"
	"github.com/streamcart/streamcart_backend/utils"
)

type VideoController struct {
	videos    *repositories.VideoRepository
	discovery *services.DiscoveryService
	graph     *services.GraphMutator
	counters  *services.MetricsUpdater
	history   *services.HistoryService
	creators  services.CreatorLookup
	blobs     services.BlobStore
	media     *utils.MediaProcessor
	notifier  services.Notifier
}

type VideoDeps struct {
	Videos    *repositories.VideoRepository
	Discovery *services.DiscoveryService
	Graph     *services.GraphMutator
	Counters  *services.MetricsUpdater
	History   *services.HistoryService
	Creators  services.CreatorLookup
	Blobs     services.BlobStore
	Media     *utils.MediaProcessor
	Notifier  services.Notifier
}

func NewVideoController(d VideoDeps) *VideoController {
	return &VideoController{
		videos:    d.Videos,
		discovery: d.Discovery,
		graph:     d.Graph,
		counters:  d.Counters,
		history:   d.History,
		creators:  d.Creators,
		blobs:     d.Blobs,
		media:     d.Media,
		notifier:  d.Notifier,
	}
}

// videoList attaches creators and renders the list envelope.
func (vc *VideoController) videoList(c echo.Context, videos []models.Video) error {
	if err := services.AttachCreators(c.Request().Context(), vc.creators, videos); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.List(videos, len(videos)))
}

// GetVideos lists approved videos, newest first.
func (vc *VideoController) GetVideos(c echo.Context) error {
	videos, err := vc.videos.ListApproved(c.Request().Context(), strings.TrimSpace(c.QueryParam("search")))
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

func (vc *VideoController) SearchVideos(c echo.Context) error {
	metrics.DiscoveryQueries.WithLabelValues("search").Inc()
	videos, err := vc.discovery.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	metrics.DiscoveryResults.WithLabelValues("search").Observe(float64(len(videos)))
	return vc.videoList(c, videos)
}

func (vc *VideoController) GetRelatedVideos(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	metrics.DiscoveryQueries.WithLabelValues("related").Inc()
	videos, err := vc.discovery.Related(c.Request().Context(), id)
	if err != nil {
		return err
	}
	metrics.DiscoveryResults.WithLabelValues("related").Observe(float64(len(videos)))
	return vc.videoList(c, videos)
}

func (vc *VideoController) GetTrendingVideos(c echo.Context) error {
	videos, err := vc.videos.Trending(c.Request().Context())
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

// GetSubscribedVideos is the feed of creators the caller follows.
func (vc *VideoController) GetSubscribedVideos(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("Not authorized to access this route")
	}
	videos, err := vc.videos.ByCreators(c.Request().Context(), user.SubscribedTo)
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

func (vc *VideoController) GetLikedVideos(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("Not authorized to access this route")
	}
	videos, err := vc.videos.FindApprovedByIDs(c.Request().Context(), user.LikedVideos)
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

func (vc *VideoController) GetWatchHistory(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	videos, err := vc.history.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

func (vc *VideoController) AddToWatchHistory(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	videoID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := vc.history.Add(c.Request().Context(), userID, videoID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.Message("Video added to watch history"))
}

// LikeVideo toggles the caller's like and notifies the creator on a new like.
func (vc *VideoController) LikeVideo(c echo.Context) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	videoID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	state, err := vc.graph.ToggleEdge(ctx, userID, videoID, services.EdgeLike)
	if err != nil {
		return err
	}
	video, err := vc.videos.FindByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video, err = vc.withCreator(ctx, video); err != nil {
		return err
	}

	if state.Present && video.CreatorModel == models.CreatorUser && video.CreatorID != userID {
		vc.notifier.Notify(ctx, video.CreatorID, services.Notification{
			Type:    services.NotificationVideoLiked,
			Title:   "New like",
			Message: fmt.Sprintf("Someone liked your video %q", video.Title),
			Data:    map[string]string{"videoId": video.ID.Hex(), "userId": userID.Hex()},
		})
	}

	return c.JSON(http.StatusOK, models.OK(models.LikeResult{
		IsLiked:    state.Present,
		LikesCount: state.InCount,
		Video:      video,
	}))
}

// GetVideo returns one video and counts the view.
func (vc *VideoController) GetVideo(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	video, err := vc.videos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if video.Status != models.VideoStatusApproved && !canSeeUnpublished(c, video) {
		return apperr.NotFound("Video not found with id of %s", id.Hex())
	}
	video, err = vc.videos.RecordView(ctx, id)
	if err != nil {
		return err
	}
	if video, err = vc.withCreator(ctx, video); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(video))
}

// withCreator returns a copy of video with its creator summary attached.
func (vc *VideoController) withCreator(ctx context.Context, video *models.Video) (*models.Video, error) {
	videos := []models.Video{*video}
	if err := services.AttachCreators(ctx, vc.creators, videos); err != nil {
		return nil, err
	}
	return &videos[0], nil
}

// canSeeUnpublished lets creators and admins open pending or rejected videos.
func canSeeUnpublished(c echo.Context, video *models.Video) bool {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return false
	}
	if claims.UserType == middleware.UserTypeAdmin {
		return true
	}
	ref, err := claims.Creator()
	return err == nil && video.IsOwnedBy(ref)
}

type uploadVideoForm struct {
	Title           string `form:"title" validate:"required,min=5,max=200"`
	Description     string `form:"description" validate:"max=2000"`
	Tags            string `form:"tags"`
	Category        string `form:"category"`
	VideoSourceType string `form:"videoSourceType" validate:"omitempty,oneof=upload google_drive"`
}

// UploadVideo stores the video and its thumbnail. Admin uploads are approved
// immediately, user uploads wait for review. A missing thumbnail is cut from
// the first second of the video.
func (vc *VideoController) UploadVideo(c echo.Context) error {
	creator, err := middleware.CurrentCreator(c)
	if err != nil {
		return err
	}

	var form uploadVideoForm
	if err := bind(c, &form); err != nil {
		return err
	}
	category, err := optionalID(form.Category)
	if err != nil {
		return err
	}

	header, err := c.FormFile("video")
	if err != nil {
		return apperr.InvalidInput("Please upload a video file")
	}
	file, err := utils.ReadUpload(header, "video", utils.MaxVideoSize)
	if err != nil {
		return apperr.InvalidInput("%s", err.Error())
	}

	ctx := c.Request().Context()
	duration, err := vc.media.ProbeDuration(file.Data, file.Name)
	if err != nil {
		logger.Warn().Err(err).Str("file", file.Name).Msg("could not probe video duration")
	}

	thumbURL, thumbKey, err := uploadImage(c, vc.blobs, "thumbnail", "thumbnails", utils.ThumbnailWidth)
	if err != nil {
		return err
	}
	if thumbURL == "" {
		frame, err := vc.media.ExtractThumbnail(file.Data, file.Name)
		if err != nil {
			return apperr.InvalidInput("Please upload a thumbnail image")
		}
		thumbKey = services.NewKey("thumbnails", "frame.jpg")
		if thumbURL, err = vc.blobs.Put(ctx, thumbKey, frame, "image/jpeg"); err != nil {
			return apperr.Internal(err)
		}
	}

	videoKey := services.NewKey("videos", file.Name)
	videoURL, err := vc.blobs.Put(ctx, videoKey, file.Data, file.ContentType)
	if err != nil {
		removeBlobs(context.WithoutCancel(ctx), vc.blobs, thumbKey)
		return apperr.Internal(err)
	}

	status := models.VideoStatusPending
	if creator.Kind == models.CreatorAdmin {
		status = models.VideoStatusApproved
	}
	source := form.VideoSourceType
	if source == "" {
		source = models.VideoSourceUpload
	}

	video := &models.Video{
		Title:           strings.TrimSpace(form.Title),
		Description:     strings.TrimSpace(form.Description),
		VideoURL:        videoURL,
		VideoSourceType: source,
		ThumbnailURL:    thumbURL,
		VideoKey:        videoKey,
		ThumbnailKey:    thumbKey,
		Duration:        duration,
		Size:            int64(len(file.Data)),
		Status:          status,
		CreatorID:       creator.ID,
		CreatorModel:    creator.Kind,
		Tags:            utils.ParseTags(form.Tags),
		Category:        category,
	}
	if err := vc.videos.Create(ctx, video); err != nil {
		removeBlobs(context.WithoutCancel(ctx), vc.blobs, videoKey, thumbKey)
		return err
	}

	return c.JSON(http.StatusCreated, models.OK(video))
}

func (vc *VideoController) GetAllVideosAdmin(c echo.Context) error {
	videos, err := vc.videos.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return vc.videoList(c, videos)
}

func (vc *VideoController) ToggleTrending(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	video, err := vc.videos.ToggleTrending(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(video))
}

func (vc *VideoController) UpdateVideoStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateVideoStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	video, err := vc.videos.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return err
	}

	if video.CreatorModel == models.CreatorUser {
		vc.notifier.Notify(ctx, video.CreatorID, services.Notification{
			Type:    services.NotificationVideoStatus,
			Title:   "Video " + video.Status,
			Message: fmt.Sprintf("Your video %q is now %s", video.Title, video.Status),
			Data:    map[string]string{"videoId": video.ID.Hex(), "status": video.Status},
		})
	}
	return c.JSON(http.StatusOK, models.OK(video))
}

func (vc *VideoController) UpdateVideoMetrics(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateMetricsRequest
	if err := c.Bind(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	updated, err := vc.counters.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]interface{}{"video": updated}))
}

// DeleteVideo removes a video. Only its creator or an admin may do so.
func (vc *VideoController) DeleteVideo(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	creator, err := middleware.CurrentCreator(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	video, err := vc.videos.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if creator.Kind != models.CreatorAdmin && !video.IsOwnedBy(creator) {
		return apperr.Forbidden("Not authorized to delete this video")
	}
	if err := vc.videos.Delete(ctx, id); err != nil {
		return err
	}
	removeBlobs(context.WithoutCancel(ctx), vc.blobs, video.VideoKey, video.ThumbnailKey)

	return c.JSON(http.StatusOK, models.Message("Video deleted successfully"))
}

