package postgres

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
    id          UUID PRIMARY KEY,
    title       VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time  TIMESTAMPTZ NOT NULL,
    end_time    TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT meetings_end_after_start CHECK (end_time > start_time)
);

CREATE INDEX IF NOT EXISTS idx_meetings_start_time ON meetings (start_time);
CREATE INDEX IF NOT EXISTS idx_meetings_end_time ON meetings (end_time);

CREATE TABLE IF NOT EXISTS participants (
    id         UUID PRIMARY KEY,
    seq        BIGINT GENERATED ALWAYS AS IDENTITY,
    meeting_id UUID NOT NULL REFERENCES meetings (id) ON DELETE CASCADE,
    email      VARCHAR(254) NOT NULL,
    name       VARCHAR(100) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT participants_meeting_email_key UNIQUE (meeting_id, email)
);

CREATE INDEX IF NOT EXISTS idx_participants_email ON participants (email);
`
